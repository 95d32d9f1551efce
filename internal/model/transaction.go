package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single financial transaction as seen by the pipeline.
// Category is only populated on labeled training data; Date may be nil
// (statements and manual entries do not always carry one). UserID is
// carried through the corpus format but ignored by the pipeline.
type Transaction struct {
	Date        *time.Time
	Description string
	Amount      decimal.Decimal
	Category    string
	UserID      string
}

// Prediction is the categorization result for one transaction. Confidence
// is the maximum class posterior; Probabilities holds the full posterior
// keyed by category name. Description and Amount echo the input so callers
// can correlate results without keeping their own copy.
type Prediction struct {
	Category      string
	Confidence    float64
	Probabilities map[string]float64
	Description   string
	Amount        decimal.Decimal
}
