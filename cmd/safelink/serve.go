package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/safelinkedu/safelink/internal/config"
	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger := logging.NewStdoutLogger("safelink")

			srv, err := server.NewServer(server.Config{
				ListenAddr:      cfg.ListenAddr,
				DBPath:          cfg.DBPath,
				CORSOrigin:      cfg.CORSOrigin,
				JWTSecret:       cfg.JWTSecret,
				TokenTTL:        cfg.TokenTTL,
				ReputationDelay: cfg.ReputationDelay,
				Logger:          logger,
			})
			if err != nil {
				return fmt.Errorf("starting server: %w", err)
			}
			defer srv.Close()

			logger.Info("listening", logging.Field{Key: "addr", Value: cfg.ListenAddr})
			return srv.HTTPServer().ListenAndServe()
		},
	}
	return cmd
}
