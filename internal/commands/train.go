package commands

import (
	"github.com/spf13/cobra"

	"github.com/spendwise/spendcat/internal/logger"
	"github.com/spendwise/spendcat/internal/training"
)

func newTrainCommand() *cobra.Command {
	var corpusPath string
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the categorization model and save its artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if corpusPath != "" {
				cfg.Paths.Corpus = corpusPath
			}
			if artifactPath != "" {
				cfg.Paths.Artifact = artifactPath
			}

			// Run logs accuracies; a returned error (including
			// TrainingDataError) propagates as a non-zero exit.
			_, err = training.Run(cfg, logger.New())
			return err
		},
	}

	cmd.Flags().StringVar(&corpusPath, "corpus", "", "corpus path (default from config)")
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "artifact path (default from config)")

	return cmd
}
