// Package training fits the feature extractor and the classifier on the
// labeled corpus and emits one atomic model artifact. The extractor state
// is fitted on the training split only; the held-out split is used for
// nothing but the generalization estimate.
package training

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spendwise/spendcat/internal/artifact"
	"github.com/spendwise/spendcat/internal/classifier"
	"github.com/spendwise/spendcat/internal/config"
	"github.com/spendwise/spendcat/internal/corpus"
	"github.com/spendwise/spendcat/internal/features"
	"github.com/spendwise/spendcat/internal/model"
)

// DataError reports an unusable training corpus: missing, empty, or
// containing records the configured label set cannot account for.
type DataError struct {
	Path   string
	Reason string
}

func (e DataError) Error() string {
	return fmt.Sprintf("training data %s: %s", e.Path, e.Reason)
}

// Result summarizes a completed training run.
type Result struct {
	Artifact  *artifact.Artifact
	TrainSize int
	TestSize  int
}

// Run executes the full pipeline: load the corpus, split it with the
// configured seed and test fraction, fit the extractor on the training
// subset only, fit the forest, evaluate both subsets, and save the
// artifact atomically. On any failure the prior artifact, if one exists,
// is left untouched.
func Run(cfg *config.Config, log zerolog.Logger) (*Result, error) {
	txs, err := corpus.ReadFile(cfg.Paths.Corpus)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, DataError{Path: cfg.Paths.Corpus, Reason: "corpus file not found; run generate first"}
		}
		return nil, DataError{Path: cfg.Paths.Corpus, Reason: err.Error()}
	}
	if len(txs) == 0 {
		return nil, DataError{Path: cfg.Paths.Corpus, Reason: "corpus is empty"}
	}

	labels := cfg.Labels()
	labelIndex := make(map[string]int, len(labels))
	for i, l := range labels {
		labelIndex[l] = i
	}
	y := make([]int, len(txs))
	for i, tx := range txs {
		cls, ok := labelIndex[tx.Category]
		if !ok {
			return nil, DataError{
				Path:   cfg.Paths.Corpus,
				Reason: fmt.Sprintf("record %d has category %q outside the configured set", i+1, tx.Category),
			}
		}
		y[i] = cls
	}
	log.Info().Int("records", len(txs)).Str("corpus", cfg.Paths.Corpus).Msg("loaded corpus")

	trainIdx, testIdx := split(len(txs), cfg.Training.TestFraction, cfg.Training.Seed)

	trainTxs := make([]model.Transaction, len(trainIdx))
	for i, idx := range trainIdx {
		trainTxs[i] = txs[idx]
	}
	state := features.Fit(trainTxs, cfg.Pipeline.VocabSize, cfg.Pipeline.NgramMax, cfg.Keywords())

	xTrain, yTrain := transform(txs, y, trainIdx, state)
	xTest, yTest := transform(txs, y, testIdx, state)

	forest := classifier.Fit(xTrain, yTrain, len(labels), classifier.Options{
		Trees:    cfg.Training.Trees,
		MaxDepth: cfg.Training.MaxDepth,
		MinLeaf:  cfg.Training.MinLeaf,
		Seed:     cfg.Training.Seed,
	})

	trainAcc := accuracy(forest, xTrain, yTrain)
	testAcc := trainAcc
	if len(testIdx) > 0 {
		testAcc = accuracy(forest, xTest, yTest)
	} else {
		log.Warn().Msg("held-out split is empty, reporting training accuracy for both")
	}
	log.Info().
		Float64("train_accuracy", trainAcc).
		Float64("test_accuracy", testAcc).
		Int("train_size", len(trainIdx)).
		Int("test_size", len(testIdx)).
		Msg("training complete")

	art := &artifact.Artifact{
		ID:            uuid.NewString(),
		TrainedAt:     time.Now().UTC(),
		Labels:        labels,
		Extractor:     state,
		Forest:        forest,
		TrainAccuracy: trainAcc,
		TestAccuracy:  testAcc,
	}
	if err := artifact.Save(cfg.Paths.Artifact, art); err != nil {
		return nil, err
	}
	log.Info().Str("artifact", cfg.Paths.Artifact).Str("id", art.ID).Msg("artifact saved")

	return &Result{Artifact: art, TrainSize: len(trainIdx), TestSize: len(testIdx)}, nil
}

// split partitions [0, n) into train and test index sets using a seeded
// shuffle, so runs are reproducible.
func split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testFraction)
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

func transform(txs []model.Transaction, y []int, idx []int, state features.State) ([][]float64, []int) {
	x := make([][]float64, len(idx))
	labels := make([]int, len(idx))
	for i, j := range idx {
		x[i] = features.Transform(txs[j], state).Dense()
		labels[i] = y[j]
	}
	return x, labels
}

func accuracy(f *classifier.Forest, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i, row := range x {
		if cls, _ := f.Predict(row); cls == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}
