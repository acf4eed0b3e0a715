package cli

import (
	"context"
	"fmt"
	"time"

	"exam-grading-service/internal/auth"
	"exam-grading-service/internal/config"
	"github.com/spf13/cobra"
)

// NewTokenCmd issues bearer tokens for registered users.
func NewTokenCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue access tokens",
	}

	var userID int64
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Print a bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := issueToken(cmd.Context(), *configPath, userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	issue.Flags().Int64Var(&userID, "user-id", 0, "id printed by `user create`")
	_ = issue.MarkFlagRequired("user-id")

	cmd.AddCommand(issue)
	return cmd
}

func issueToken(ctx context.Context, configPath string, userID int64) (string, error) {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return "", err
	}
	defer log.Sync()

	store, err := openStore(cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	u, err := store.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	signer, err := auth.NewSigner(cfg.Auth.SigningKey, config.TTLDuration(cfg.Auth.TokenTTL, 12*time.Hour))
	if err != nil {
		return "", err
	}
	return signer.Issue(u)
}
