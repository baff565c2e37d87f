package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stemcapstone/smartgoals/internal/repository"
	"github.com/stemcapstone/smartgoals/internal/service"
)

func TokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint an API token for a user",
		Long:  "Mint a bearer token for local testing. It expires after JWT_EXPIRY.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, database, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			userRepo := repository.NewUserRepository(database)
			u, err := service.NewUserService(userRepo).ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			auth := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
			token, expires, err := auth.GenerateJWT(u)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
			return nil
		},
	}
}
