package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/spendwise/spendcat/internal/model"
	"github.com/spendwise/spendcat/internal/predictor"
)

func newPredictCommand() *cobra.Command {
	var description string
	var amount string
	var date string
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Categorize a single transaction from the command line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if artifactPath != "" {
				cfg.Paths.Artifact = artifactPath
			}

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amount, err)
			}

			tx := model.Transaction{Description: description, Amount: amt}
			if date != "" {
				d, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("parsing date %q: %w", date, err)
				}
				tx.Date = &d
			}

			svc := predictor.New(cfg.Paths.Artifact, cfg.Labels(), cfg.Server.MaxBatch)
			if err := svc.Load(); err != nil {
				return err
			}

			p, err := svc.Predict(tx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s (%.2f)\n", p.Description, p.Category, p.Confidence)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "transaction description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringVar(&amount, "amount", "", "transaction amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&date, "date", "", "transaction date, YYYY-MM-DD")
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "artifact path (default from config)")

	return cmd
}
