package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Categories, 8)
	assert.Equal(t, 500, cfg.Pipeline.VocabSize)
	assert.Equal(t, 0.2, cfg.Training.TestFraction)
	assert.Equal(t, int64(42), cfg.Training.Seed)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendcat.yaml")
	cfg := Default()
	cfg.Server.MaxBatch = 42

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Labels(), loaded.Labels())
	assert.Equal(t, 42, loaded.Server.MaxBatch)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendcat.yaml")
	minimal := &Config{
		Categories: []CategoryConfig{
			{Name: "Food", Keywords: []string{"coffee"}, MinAmount: 1, MaxAmount: 10},
		},
	}
	require.NoError(t, Save(path, minimal))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500, loaded.Pipeline.VocabSize)
	assert.Equal(t, 2, loaded.Pipeline.NgramMax)
	assert.Equal(t, "models/classifier.json", loaded.Paths.Artifact)
}

func TestLabels_PreservesOrder(t *testing.T) {
	cfg := Default()
	labels := cfg.Labels()
	assert.Equal(t, "Food", labels[0])
	assert.Equal(t, "Other", labels[len(labels)-1])
}

func TestKeywords_DedupedLowercase(t *testing.T) {
	cfg := &Config{
		Categories: []CategoryConfig{
			{Name: "A", Keywords: []string{"Uber", "uber", "GAS"}},
			{Name: "B", Keywords: []string{"gas", "metro"}},
		},
	}
	assert.Equal(t, []string{"uber", "gas", "metro"}, cfg.Keywords())
}

func TestValidate_Failures(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		return cfg
	}

	cfg := base()
	cfg.Categories = nil
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Categories[1].Name = cfg.Categories[0].Name
	assert.Error(t, cfg.Validate(), "duplicate names")

	cfg = base()
	cfg.Categories[0].MinAmount = 50
	cfg.Categories[0].MaxAmount = 10
	assert.Error(t, cfg.Validate(), "inverted amount range")

	cfg = base()
	cfg.Categories[0].Keywords = nil
	cfg.Categories[0].Merchants = nil
	assert.Error(t, cfg.Validate(), "no description pools")

	cfg = base()
	cfg.Training.TestFraction = 1.0
	assert.Error(t, cfg.Validate(), "test fraction out of range")
}
