package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level spendcat.yaml configuration. The
// category list defines the closed label set: the same set must be in
// effect when a model is trained and when it serves predictions.
type Config struct {
	Categories []CategoryConfig `yaml:"categories"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Training   TrainingConfig   `yaml:"training"`
	Server     ServerConfig     `yaml:"server"`
	Paths      PathsConfig      `yaml:"paths"`
}

// CategoryConfig describes one spending category: the label itself, the
// keyword and merchant pools the synthetic generator draws descriptions
// from, and the amount range typical for the category. Weight biases the
// generator's category draw; zero means 1.
type CategoryConfig struct {
	Name      string   `yaml:"name"`
	Keywords  []string `yaml:"keywords"`
	Merchants []string `yaml:"merchants,omitempty"`
	MinAmount float64  `yaml:"min_amount"`
	MaxAmount float64  `yaml:"max_amount"`
	Weight    float64  `yaml:"weight,omitempty"`
}

// PipelineConfig controls the feature extractor.
type PipelineConfig struct {
	// VocabSize caps the tf-idf vocabulary. Larger caps increase
	// discriminative power at the cost of sparsity and artifact size.
	VocabSize int `yaml:"vocab_size"`
	// NgramMax is the largest n-gram length fed to the vectorizer.
	NgramMax int `yaml:"ngram_max"`
}

// TrainingConfig controls the training pipeline.
type TrainingConfig struct {
	TestFraction float64 `yaml:"test_fraction"`
	Seed         int64   `yaml:"seed"`
	Trees        int     `yaml:"trees"`
	MaxDepth     int     `yaml:"max_depth"` // 0 = unlimited
	MinLeaf      int     `yaml:"min_leaf"`
}

// ServerConfig controls the inference HTTP server.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	MaxBatch int    `yaml:"max_batch"`
}

// PathsConfig locates the corpus file the trainer consumes and the model
// artifact it produces.
type PathsConfig struct {
	Corpus   string `yaml:"corpus"`
	Artifact string `yaml:"artifact"`
}

// Load reads a spendcat.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Labels returns the closed category label set, in configuration order.
func (c *Config) Labels() []string {
	labels := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		labels[i] = cat.Name
	}
	return labels
}

// Keywords returns the union of all category keyword pools, lowercased and
// deduplicated, preserving configuration order. The extractor freezes this
// list into its fitted state so the feature layout cannot drift between
// training and inference.
func (c *Config) Keywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, cat := range c.Categories {
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			out = append(out, kw)
		}
	}
	return out
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("no categories configured")
	}
	names := make(map[string]bool)
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category with empty name")
		}
		if names[cat.Name] {
			return fmt.Errorf("duplicate category %q", cat.Name)
		}
		names[cat.Name] = true
		if len(cat.Keywords) == 0 && len(cat.Merchants) == 0 {
			return fmt.Errorf("category %q has no keywords or merchants", cat.Name)
		}
		if cat.MinAmount < 0 || cat.MaxAmount < cat.MinAmount {
			return fmt.Errorf("category %q has invalid amount range [%v, %v]", cat.Name, cat.MinAmount, cat.MaxAmount)
		}
		if cat.Weight < 0 {
			return fmt.Errorf("category %q has negative weight", cat.Name)
		}
	}
	if c.Training.TestFraction < 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("test_fraction %v not in [0, 1)", c.Training.TestFraction)
	}
	if c.Pipeline.VocabSize <= 0 {
		return fmt.Errorf("vocab_size must be positive")
	}
	if c.Training.Trees <= 0 {
		return fmt.Errorf("trees must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Pipeline.VocabSize == 0 {
		c.Pipeline.VocabSize = 500
	}
	if c.Pipeline.NgramMax == 0 {
		c.Pipeline.NgramMax = 2
	}
	if c.Training.TestFraction == 0 {
		c.Training.TestFraction = 0.2
	}
	if c.Training.Seed == 0 {
		c.Training.Seed = 42
	}
	if c.Training.Trees == 0 {
		c.Training.Trees = 100
	}
	if c.Training.MinLeaf == 0 {
		c.Training.MinLeaf = 1
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.MaxBatch == 0 {
		c.Server.MaxBatch = 500
	}
	if c.Paths.Corpus == "" {
		c.Paths.Corpus = "data/raw/transactions.csv"
	}
	if c.Paths.Artifact == "" {
		c.Paths.Artifact = "models/classifier.json"
	}
}

// Default returns a Config with the built-in category set and sensible
// pipeline defaults for a new project.
func Default() *Config {
	cfg := &Config{
		Categories: []CategoryConfig{
			{
				Name:      "Food",
				Keywords:  []string{"mcdonalds", "starbucks", "groceries", "restaurant", "pizza", "coffee", "lunch", "dinner"},
				Merchants: []string{"MCDONALDS", "STARBUCKS", "WHOLE FOODS", "CHIPOTLE", "DOMINOS", "SUBWAY"},
				MinAmount: 5, MaxAmount: 100,
			},
			{
				Name:      "Transport",
				Keywords:  []string{"uber", "lyft", "gas station", "metro", "parking", "taxi", "bus fare"},
				Merchants: []string{"UBER *RIDE", "LYFT *TRIP", "SHELL OIL", "EXXONMOBIL", "CITY METRO"},
				MinAmount: 10, MaxAmount: 150,
			},
			{
				Name:      "Shopping",
				Keywords:  []string{"amazon", "target", "walmart", "clothing", "electronics", "home depot"},
				Merchants: []string{"AMAZON.COM", "TARGET", "WALMART", "BEST BUY", "APPLE STORE"},
				MinAmount: 20, MaxAmount: 500,
			},
			{
				Name:      "Entertainment",
				Keywords:  []string{"netflix", "spotify", "cinema", "concert", "theater"},
				Merchants: []string{"NETFLIX", "SPOTIFY", "AMC THEATRES", "TICKETMASTER"},
				MinAmount: 10, MaxAmount: 200,
			},
			{
				Name:      "Utilities",
				Keywords:  []string{"electric bill", "water bill", "internet", "phone bill"},
				Merchants: []string{"CON EDISON", "VERIZON WIRELESS", "COMCAST", "AT&T"},
				MinAmount: 50, MaxAmount: 300,
			},
			{
				Name:      "Healthcare",
				Keywords:  []string{"pharmacy", "hospital", "doctor", "dentist", "insurance"},
				Merchants: []string{"CVS PHARMACY", "WALGREENS", "HOSPITAL", "MEDICAL CENTER"},
				MinAmount: 20, MaxAmount: 1000,
			},
			{
				Name:      "Income",
				Keywords:  []string{"salary", "transfer", "refund", "deposit"},
				Merchants: []string{"DIRECT DEPOSIT", "BANK TRANSFER", "PAYPAL", "VENMO"},
				MinAmount: 1000, MaxAmount: 5000,
			},
			{
				Name:      "Other",
				Keywords:  []string{"atm withdrawal", "bank fee", "unknown"},
				Merchants: []string{"ATM WITHDRAWAL", "BANK FEE", "MISC CHARGE"},
				MinAmount: 2, MaxAmount: 50,
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}
