package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/safelinkedu/safelink/internal/auth"
	"github.com/safelinkedu/safelink/internal/config"
	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/store"
)

func newSetupAdminCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "setup-admin",
		Short: "Create the initial admin user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger := logging.NewStdoutLogger("setup-admin")
			st, err := store.New(cfg.DBPath, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			svc, err := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL, logger)
			if err != nil {
				return err
			}

			user, err := svc.Setup(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			pterm.Success.Printfln("admin user %s created", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
