package cli

import (
	"errors"
	"fmt"

	"company-quiz-service/internal/auth"
	"company-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewTokenCmd prints a bearer token for a user id, for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("auth.jwt_secret not configured")
			}
			if userID <= 0 {
				return errors.New("--user must be a positive id")
			}
			tok, err := auth.NewService(cfg.Auth.JWTSecret).Issue(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id to put in the token subject")
	return cmd
}
