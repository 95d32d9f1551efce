// Package artifact defines the serialized model bundle. The extractor
// state and the classifier always travel together: they are written as one
// file, replaced as one file, and loaded as one file, so the two can never
// be mixed across training runs.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spendwise/spendcat/internal/classifier"
	"github.com/spendwise/spendcat/internal/features"
)

// ErrLabelSetMismatch is returned by Load when the artifact's label set
// differs from the configured closed category set.
var ErrLabelSetMismatch = errors.New("artifact label set does not match configured categories")

// Artifact is the trained, versioned bundle produced by one training run.
// It is immutable after creation and replaced wholesale by retraining.
type Artifact struct {
	ID            string             `json:"id"`
	TrainedAt     time.Time          `json:"trained_at"`
	Labels        []string           `json:"labels"`
	Extractor     features.State     `json:"extractor"`
	Forest        *classifier.Forest `json:"forest"`
	TrainAccuracy float64            `json:"train_accuracy"`
	TestAccuracy  float64            `json:"test_accuracy"`
}

// Save writes the artifact atomically: JSON to a sibling temp file, then a
// rename over the destination. A concurrent reader sees either the old or
// the new artifact, never a torn mixture.
func Save(path string, a *Artifact) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating artifact dir: %w", err)
		}
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshaling artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("installing artifact: %w", err)
	}
	return nil
}

// Load reads the artifact at path. When expectedLabels is non-empty the
// artifact's label set must match it exactly, order included; a mismatch
// is fatal rather than silently tolerated.
func Load(path string, expectedLabels []string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing artifact %s: %w", path, err)
	}
	if a.Forest == nil || len(a.Labels) == 0 {
		return nil, fmt.Errorf("artifact %s: missing classifier or labels", path)
	}

	if len(expectedLabels) > 0 && !slices.Equal(a.Labels, expectedLabels) {
		return nil, fmt.Errorf("%w: artifact has %v, configuration expects %v",
			ErrLabelSetMismatch, a.Labels, expectedLabels)
	}
	return &a, nil
}
