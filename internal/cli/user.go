package cli

import (
	"context"
	"fmt"
	"strings"

	"exam-grading-service/internal/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewUserCmd manages the identity directory.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users known to the grading service",
	}

	var (
		username string
		name     string
		admin    bool
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a student or administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := createUser(cmd.Context(), *configPath, username, name, admin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", u.ID)
			return nil
		},
	}
	create.Flags().StringVar(&username, "username", "", "unique login name")
	create.Flags().StringVar(&name, "name", "", "display name shown in results")
	create.Flags().BoolVar(&admin, "admin", false, "grant administrator rights")
	_ = create.MarkFlagRequired("username")

	cmd.AddCommand(create)
	return cmd
}

func createUser(ctx context.Context, configPath, username, name string, admin bool) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, domain.Invalid("username", "must not be empty")
	}
	if strings.TrimSpace(name) == "" {
		name = username
	}

	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return domain.User{}, err
	}
	defer log.Sync()

	store, err := openStore(cfg)
	if err != nil {
		return domain.User{}, err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return domain.User{}, err
	}

	u, err := store.CreateUser(ctx, domain.User{Username: username, DisplayName: name, IsAdmin: admin})
	if err != nil {
		return domain.User{}, err
	}
	log.Info("user created", zap.Int64("user_id", u.ID), zap.String("username", u.Username), zap.Bool("admin", u.IsAdmin))
	return u, nil
}
