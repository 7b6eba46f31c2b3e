package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/tasksplit/internal/domain"
	"github.com/phrazzld/tasksplit/internal/platform/postgres"
	"github.com/spf13/cobra"
)

type createAdminOptions struct {
	name  string
	email string
}

// newCreateAdminCmd bootstraps an admin account directly in the database,
// for deployments that keep the public register-admin endpoint disabled.
// The password is read from the first line of stdin.
func newCreateAdminCmd(opts *rootOptions) *cobra.Command {
	adminOpts := &createAdminOptions{}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account (password read from stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}

			admin, err := domain.NewAdmin(adminOpts.name, adminOpts.email, password)
			if err != nil {
				return err
			}

			cfg, log, err := initializeApp(opts.configFile)
			if err != nil {
				return err
			}
			db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			users := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, log)
			if err := users.Create(cmd.Context(), admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}

			log.Info("Admin account created", "user_id", admin.ID)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created admin %s\n", admin.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&adminOpts.name, "name", "", "display name")
	cmd.Flags().StringVar(&adminOpts.email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password must be provided on stdin")
	}
	return password, nil
}
