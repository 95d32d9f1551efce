package features

import (
	"math"
	"strings"
	"unicode"

	"github.com/spendwise/spendcat/internal/model"
)

// Sentinel calendar features for records without a date. Real months are
// 1-12 and real weekdays 0-6, so neither sentinel collides with a real
// value.
const (
	SentinelMonth   = 0
	SentinelWeekday = -1
)

// State is the frozen output of fitting the extractor: the tf-idf
// vocabulary, the numeric scaler statistics, and the keyword flag list.
// It is embedded in the model artifact together with the classifier and
// is never re-fitted at inference time.
type State struct {
	Vectorizer VectorizerState `json:"vectorizer"`
	Scaler     ScalerState     `json:"scaler"`
	Keywords   []string        `json:"keywords"`
}

// Width returns the total dense width of vectors produced by this state.
func (st State) Width() int {
	return st.Vectorizer.Size() + len(st.Scaler.Mean)
}

// Vector is the feature representation of one transaction: sparse tf-idf
// term weights over the vocabulary columns, plus a standardized dense
// numeric block.
type Vector struct {
	Terms   map[int]float64
	Numeric []float64
	TermDim int
}

// Dense returns the concatenated dense form, term columns first.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.TermDim+len(v.Numeric))
	for col, w := range v.Terms {
		out[col] = w
	}
	copy(out[v.TermDim:], v.Numeric)
	return out
}

// Fit learns the extractor state from labeled training transactions. The
// keyword list comes from configuration and is frozen into the state so
// inference sees the identical feature layout even if the configuration
// changes later.
func Fit(txs []model.Transaction, vocabSize, ngramMax int, keywords []string) State {
	docs := make([]string, len(txs))
	for i, tx := range txs {
		docs[i] = tx.Description
	}
	vec := FitVectorizer(docs, vocabSize, ngramMax)

	kw := make([]string, len(keywords))
	for i, k := range keywords {
		kw[i] = strings.ToLower(k)
	}

	raw := make([][]float64, len(txs))
	for i, tx := range txs {
		raw[i] = rawNumeric(tx, kw)
	}
	return State{Vectorizer: vec, Scaler: FitScaler(raw), Keywords: kw}
}

// Transform converts one transaction into a feature vector using frozen
// state. It is deterministic and never fails: an empty description yields
// a zero term vector and a missing date the sentinel calendar features.
func Transform(tx model.Transaction, st State) Vector {
	return Vector{
		Terms:   st.Vectorizer.TermWeights(tx.Description),
		Numeric: st.Scaler.Apply(rawNumeric(tx, st.Keywords)),
		TermDim: st.Vectorizer.Size(),
	}
}

// rawNumeric computes the unscaled dense block: amount, log1p(amount),
// description length, token count, digit and special-character flags,
// month, day-of-week, then one presence flag per keyword.
func rawNumeric(tx model.Transaction, keywords []string) []float64 {
	amount, _ := tx.Amount.Float64()
	desc := strings.ToLower(tx.Description)
	tokens := Tokenize(tx.Description)

	var hasDigit, hasSpecial float64
	for _, r := range tx.Description {
		switch {
		case unicode.IsDigit(r):
			hasDigit = 1
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			hasSpecial = 1
		}
	}

	month := float64(SentinelMonth)
	weekday := float64(SentinelWeekday)
	if tx.Date != nil {
		month = float64(tx.Date.Month())
		weekday = float64(tx.Date.Weekday())
	}

	row := make([]float64, 0, 8+len(keywords))
	row = append(row,
		amount,
		math.Log1p(amount),
		float64(len(tx.Description)),
		float64(len(tokens)),
		hasDigit,
		hasSpecial,
		month,
		weekday,
	)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}
	return row
}
