// Package predictor serves predictions from the currently loaded model
// artifact. The artifact is immutable and shared by all concurrent
// requests; Reload swaps the handle atomically without disturbing
// in-flight readers holding the old one.
package predictor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spendwise/spendcat/internal/artifact"
	"github.com/spendwise/spendcat/internal/features"
	"github.com/spendwise/spendcat/internal/model"
)

// ErrNotReady is returned for every request until a model artifact has
// been loaded. The service never fabricates a guess instead.
var ErrNotReady = errors.New("no model artifact loaded: run training first")

// ValidationError reports a rejected input field. Batch requests carry one
// per failed item so valid items in the same batch are still served.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Service answers prediction requests against the current artifact.
type Service struct {
	path     string
	labels   []string
	maxBatch int
	current  atomic.Pointer[artifact.Artifact]
}

// New creates a Service reading its artifact from path. labels is the
// configured closed category set the artifact must match; maxBatch bounds
// PredictBatch (0 = unbounded).
func New(path string, labels []string, maxBatch int) *Service {
	return &Service{path: path, labels: labels, maxBatch: maxBatch}
}

// Load reads the artifact from disk and installs it. Safe to call while
// requests are in flight; they keep whichever artifact they started with.
func (s *Service) Load() error {
	a, err := artifact.Load(s.path, s.labels)
	if err != nil {
		return err
	}
	s.current.Store(a)
	return nil
}

// Ready reports whether an artifact is loaded and predictions can be
// served.
func (s *Service) Ready() bool {
	return s.current.Load() != nil
}

// Artifact returns the currently loaded artifact, or nil.
func (s *Service) Artifact() *artifact.Artifact {
	return s.current.Load()
}

// Predict categorizes a single transaction. The amount must be
// non-negative; an empty description is valid and is classified from the
// numeric features alone.
func (s *Service) Predict(tx model.Transaction) (model.Prediction, error) {
	a := s.current.Load()
	if a == nil {
		return model.Prediction{}, ErrNotReady
	}
	if tx.Amount.IsNegative() {
		return model.Prediction{}, ValidationError{Field: "amount", Reason: "must be non-negative"}
	}

	probs := a.Forest.PredictProba(features.Transform(tx, a.Extractor).Dense())

	best := 0
	byLabel := make(map[string]float64, len(a.Labels))
	for c, p := range probs {
		byLabel[a.Labels[c]] = p
		if p > probs[best] {
			best = c
		}
	}

	return model.Prediction{
		Category:      a.Labels[best],
		Confidence:    probs[best],
		Probabilities: byLabel,
		Description:   tx.Description,
		Amount:        tx.Amount,
	}, nil
}

// Outcome pairs one batch item with its prediction or its per-item
// rejection.
type Outcome struct {
	Prediction model.Prediction
	Err        error
}

// PredictBatch categorizes an ordered sequence of transactions, returning
// a same-length outcome slice in input order. Invalid items fail
// individually without discarding the rest. An empty batch yields an empty
// slice; a batch above the configured maximum is rejected whole.
func (s *Service) PredictBatch(txs []model.Transaction) ([]Outcome, error) {
	if !s.Ready() {
		return nil, ErrNotReady
	}
	if s.maxBatch > 0 && len(txs) > s.maxBatch {
		return nil, ValidationError{
			Field:  "batch",
			Reason: fmt.Sprintf("size %d exceeds maximum %d", len(txs), s.maxBatch),
		}
	}

	out := make([]Outcome, len(txs))
	for i, tx := range txs {
		p, err := s.Predict(tx)
		out[i] = Outcome{Prediction: p, Err: err}
	}
	return out, nil
}
