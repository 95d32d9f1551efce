package commands

import (
	"errors"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/spendwise/spendcat/internal/logger"
	"github.com/spendwise/spendcat/internal/predictor"
	"github.com/spendwise/spendcat/internal/server"
)

func newServeCommand() *cobra.Command {
	var addr string
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inference HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			if artifactPath != "" {
				cfg.Paths.Artifact = artifactPath
			}

			log := logger.New()
			svc := predictor.New(cfg.Paths.Artifact, cfg.Labels(), cfg.Server.MaxBatch)
			if err := svc.Load(); err != nil {
				// No artifact yet is a degraded start: the service
				// answers not-ready until training runs. Anything
				// else, including a label set mismatch, is fatal.
				if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				log.Warn().Str("artifact", cfg.Paths.Artifact).Msg("artifact not found, serving not-ready")
			} else {
				a := svc.Artifact()
				log.Info().Str("id", a.ID).Time("trained_at", a.TrainedAt).Msg("artifact loaded")
			}

			log.Info().Str("addr", addr).Msg("serving")
			return server.New(svc, log).App().Listen(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "artifact path (default from config)")

	return cmd
}
