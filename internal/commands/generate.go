package commands

import (
	"github.com/spf13/cobra"

	"github.com/spendwise/spendcat/internal/generate"
	"github.com/spendwise/spendcat/internal/logger"
)

func newGenerateCommand() *cobra.Command {
	var samples int
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a synthetic labeled transaction corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Paths.Corpus
			}

			log := logger.New()
			gen := generate.New(cfg)
			if err := gen.WriteCorpus(out, samples); err != nil {
				return err
			}
			log.Info().Int("samples", samples).Str("corpus", out).Msg("corpus generated")
			return nil
		},
	}

	cmd.Flags().IntVar(&samples, "samples", 5000, "number of transactions to generate")
	cmd.Flags().StringVar(&out, "out", "", "corpus output path (default from config)")

	return cmd
}
