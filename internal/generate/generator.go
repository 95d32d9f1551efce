// Package generate produces the synthetic labeled corpus used to
// bootstrap training when no real labeled data exists. Descriptions carry
// pseudo-random numeric suffixes so the classifier cannot memorize exact
// strings.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/spendwise/spendcat/internal/config"
	"github.com/spendwise/spendcat/internal/corpus"
	"github.com/spendwise/spendcat/internal/model"
)

var descSuffixes = []string{"PAYMENT", "PURCHASE", "CHARGE", ""}

// Generator produces synthetic transactions from the category
// configuration. It honors each category's keyword pool, merchant pool,
// and amount range exactly; determinism across runs is not required.
type Generator struct {
	cfg         *config.Config
	faker       *gofakeit.Faker
	totalWeight float64
	windowStart time.Time
}

// New creates a Generator over cfg. Dates are drawn uniformly from the
// one-year window ending now.
func New(cfg *config.Config) *Generator {
	total := 0.0
	for _, cat := range cfg.Categories {
		total += weight(cat)
	}
	return &Generator{
		cfg:         cfg,
		faker:       gofakeit.New(0),
		totalWeight: total,
		windowStart: time.Now().UTC().AddDate(-1, 0, 0),
	}
}

// Generate returns n labeled transactions.
func (g *Generator) Generate(n int) []model.Transaction {
	txs := make([]model.Transaction, n)
	for i := range txs {
		txs[i] = g.one()
	}
	return txs
}

// WriteCorpus generates n transactions and writes them to the corpus file
// at path, creating parent directories as needed. No other component may
// mutate the corpus afterwards.
func (g *Generator) WriteCorpus(path string, n int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating corpus dir: %w", err)
		}
	}
	return corpus.WriteFile(path, g.Generate(n))
}

func (g *Generator) one() model.Transaction {
	cat := g.pickCategory()
	date := g.faker.DateRange(g.windowStart, g.windowStart.AddDate(1, 0, 0))
	return model.Transaction{
		Date:        &date,
		Description: g.description(cat),
		Amount:      decimal.NewFromFloat(g.faker.Float64Range(cat.MinAmount, cat.MaxAmount)).Round(2),
		Category:    cat.Name,
		UserID:      fmt.Sprintf("user_%03d", g.faker.Number(1, 3)),
	}
}

// pickCategory draws a category by configured weight, so the class
// distribution need not be uniform.
func (g *Generator) pickCategory() config.CategoryConfig {
	r := g.faker.Float64Range(0, g.totalWeight)
	for _, cat := range g.cfg.Categories {
		r -= weight(cat)
		if r <= 0 {
			return cat
		}
	}
	return g.cfg.Categories[len(g.cfg.Categories)-1]
}

// description builds a merchant-style description 70% of the time and a
// keyword-style one otherwise, falling back to whichever pool the category
// actually has.
func (g *Generator) description(cat config.CategoryConfig) string {
	useMerchant := len(cat.Merchants) > 0 &&
		(len(cat.Keywords) == 0 || g.faker.Float64Range(0, 1) < 0.7)

	if useMerchant {
		return fmt.Sprintf("%s #%d", g.faker.RandomString(cat.Merchants), g.faker.Number(1000, 9999))
	}
	base := strings.ToUpper(g.faker.RandomString(cat.Keywords))
	return strings.TrimSpace(base + " " + g.faker.RandomString(descSuffixes))
}

func weight(cat config.CategoryConfig) float64 {
	if cat.Weight > 0 {
		return cat.Weight
	}
	return 1
}
