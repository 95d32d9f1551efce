package predictor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendcat/internal/config"
	"github.com/spendwise/spendcat/internal/corpus"
	"github.com/spendwise/spendcat/internal/model"
	"github.com/spendwise/spendcat/internal/training"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func repeatTx(desc, amount, category string, n int) []model.Transaction {
	d := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	txs := make([]model.Transaction, n)
	for i := range txs {
		txs[i] = model.Transaction{Date: &d, Description: desc, Amount: dec(amount), Category: category, UserID: "user_001"}
	}
	return txs
}

// trainedService trains a small model on the given corpus and returns a
// loaded predictor.
func trainedService(t *testing.T, txs []model.Transaction) (*Service, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Corpus = filepath.Join(dir, "transactions.csv")
	cfg.Paths.Artifact = filepath.Join(dir, "classifier.json")
	cfg.Pipeline.VocabSize = 100
	cfg.Training.Trees = 25
	cfg.Server.MaxBatch = 10

	require.NoError(t, corpus.WriteFile(cfg.Paths.Corpus, txs))
	_, err := training.Run(cfg, zerolog.Nop())
	require.NoError(t, err)

	svc := New(cfg.Paths.Artifact, cfg.Labels(), cfg.Server.MaxBatch)
	require.NoError(t, svc.Load())
	return svc, cfg
}

func twoClassCorpus() []model.Transaction {
	return append(
		repeatTx("UBER RIDE #4821", "25.00", "Transport", 50),
		repeatTx("STARBUCKS #1190", "5.75", "Food", 50)...,
	)
}

func TestPredict_BeforeTrainingNotReady(t *testing.T) {
	svc := New(filepath.Join(t.TempDir(), "missing.json"), nil, 10)

	assert.False(t, svc.Ready())
	_, err := svc.Predict(model.Transaction{Description: "coffee", Amount: dec("5")})
	require.ErrorIs(t, err, ErrNotReady)

	_, err = svc.PredictBatch([]model.Transaction{{Description: "coffee", Amount: dec("5")}})
	require.ErrorIs(t, err, ErrNotReady)
}

func TestPredict_KnownMerchantScenario(t *testing.T) {
	svc, cfg := trainedService(t, twoClassCorpus())

	p, err := svc.Predict(model.Transaction{Description: "UBER RIDE #9999", Amount: dec("22.00")})
	require.NoError(t, err)

	assert.Equal(t, "Transport", p.Category)
	assert.Greater(t, p.Confidence, 0.5)
	assert.Contains(t, cfg.Labels(), p.Category)
	assert.Equal(t, "UBER RIDE #9999", p.Description)
	assert.True(t, p.Amount.Equal(dec("22.00")))
}

func TestPredict_ResultAlwaysInContract(t *testing.T) {
	svc, cfg := trainedService(t, twoClassCorpus())
	labels := cfg.Labels()

	inputs := []model.Transaction{
		{Description: "STARBUCKS COFFEE", Amount: dec("5.75")},
		{Description: "never seen before zzz", Amount: dec("999.99")},
		{Description: "", Amount: dec("10")},
		{Description: "   ", Amount: dec("0")},
	}
	for _, tx := range inputs {
		p, err := svc.Predict(tx)
		require.NoError(t, err)
		assert.Contains(t, labels, p.Category)
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)

		var sum float64
		for _, v := range p.Probabilities {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestPredict_NegativeAmountRejected(t *testing.T) {
	svc, _ := trainedService(t, twoClassCorpus())

	_, err := svc.Predict(model.Transaction{Description: "refund", Amount: dec("-5.00")})
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
}

func TestPredict_SingleCategoryCorpus(t *testing.T) {
	svc, _ := trainedService(t, repeatTx("DIRECT DEPOSIT #100", "2500.00", "Income", 100))

	p, err := svc.Predict(model.Transaction{Description: "anything at all", Amount: dec("1.00")})
	require.NoError(t, err)
	assert.Equal(t, "Income", p.Category)
	assert.Equal(t, 1.0, p.Confidence)
}

func TestPredictBatch_MatchesSingle(t *testing.T) {
	svc, _ := trainedService(t, twoClassCorpus())

	batch := []model.Transaction{
		{Description: "UBER RIDE #77", Amount: dec("30.00")},
		{Description: "STARBUCKS #5", Amount: dec("4.50")},
		{Description: "something else", Amount: dec("12.00")},
	}

	outcomes, err := svc.PredictBatch(batch)
	require.NoError(t, err)
	require.Len(t, outcomes, len(batch))

	for i, tx := range batch {
		single, err := svc.Predict(tx)
		require.NoError(t, err)
		require.NoError(t, outcomes[i].Err)
		assert.Equal(t, single.Category, outcomes[i].Prediction.Category)
		assert.Equal(t, single.Confidence, outcomes[i].Prediction.Confidence)
	}
}

func TestPredictBatch_Empty(t *testing.T) {
	svc, _ := trainedService(t, twoClassCorpus())

	outcomes, err := svc.PredictBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestPredictBatch_PartialFailure(t *testing.T) {
	svc, _ := trainedService(t, twoClassCorpus())

	outcomes, err := svc.PredictBatch([]model.Transaction{
		{Description: "UBER RIDE", Amount: dec("20.00")},
		{Description: "bad", Amount: dec("-1.00")},
		{Description: "STARBUCKS", Amount: dec("5.00")},
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 3)

	assert.NoError(t, outcomes[0].Err)
	var verr ValidationError
	assert.ErrorAs(t, outcomes[1].Err, &verr)
	assert.NoError(t, outcomes[2].Err, "valid items are still served")
}

func TestPredictBatch_SizeLimit(t *testing.T) {
	svc, _ := trainedService(t, twoClassCorpus())

	big := make([]model.Transaction, 11) // limit is 10 in trainedService
	for i := range big {
		big[i] = model.Transaction{Description: "x", Amount: dec("1")}
	}
	_, err := svc.PredictBatch(big)
	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "batch", verr.Field)
}

func TestLoad_LabelSetMismatchIsFatal(t *testing.T) {
	_, cfg := trainedService(t, twoClassCorpus())

	wrong := New(cfg.Paths.Artifact, []string{"Food", "Transport"}, 10)
	require.Error(t, wrong.Load())
	assert.False(t, wrong.Ready())
}

func TestReload_SwapsArtifact(t *testing.T) {
	svc, cfg := trainedService(t, twoClassCorpus())

	before := svc.Artifact().ID
	_, err := training.Run(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, svc.Load())

	assert.NotEqual(t, before, svc.Artifact().ID, "retrain produces a fresh artifact version")
}
