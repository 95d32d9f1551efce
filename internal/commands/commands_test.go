package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendwise/spendcat/internal/config"
	"github.com/spendwise/spendcat/internal/corpus"
)

// writeTestConfig saves a small config into dir and returns its path.
func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Corpus = filepath.Join(dir, "transactions.csv")
	cfg.Paths.Artifact = filepath.Join(dir, "classifier.json")
	cfg.Pipeline.VocabSize = 100
	cfg.Training.Trees = 25

	path := filepath.Join(dir, "spendcat.yaml")
	require.NoError(t, config.Save(path, cfg))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateTrainPredict_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)

	_, err := run(t, "generate", "--config", cfgPath, "--samples", "400")
	require.NoError(t, err)

	txs, err := corpus.ReadFile(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	assert.Len(t, txs, 400)

	_, err = run(t, "train", "--config", cfgPath)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "classifier.json"))
	require.NoError(t, err)

	out, err := run(t, "predict", "--config", cfgPath,
		"--description", "UBER *RIDE #9999", "--amount", "22.00")
	require.NoError(t, err)
	assert.Contains(t, out, "UBER *RIDE #9999")
	assert.Contains(t, out, "→")
}

func TestTrain_MissingCorpusFails(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	_, err := run(t, "train", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training data")
}

func TestPredict_BeforeTrainingFails(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	_, err := run(t, "predict", "--config", cfgPath,
		"--description", "coffee", "--amount", "5.00")
	require.Error(t, err)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := run(t, "train", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestGenerate_OutOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir)
	out := filepath.Join(dir, "alt", "corpus.csv")

	_, err := run(t, "generate", "--config", cfgPath, "--samples", "20", "--out", out)
	require.NoError(t, err)

	txs, err := corpus.ReadFile(out)
	require.NoError(t, err)
	assert.Len(t, txs, 20)
}
