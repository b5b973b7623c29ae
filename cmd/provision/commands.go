package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"authportal/internal/config"
	"authportal/internal/db"
	"authportal/internal/logging"
	"authportal/internal/model"
	"authportal/internal/repository"
)

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg    *config.Config
	db     *gorm.DB
	users  repository.UserRepository
	logger *slog.Logger
}

// openEnv connects to the configured database. Tests replace it.
var openEnv = func() (*env, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &env{
		cfg:    cfg,
		db:     gormDB,
		users:  repository.NewUserRepository(gormDB, logger),
		logger: logger,
	}, closeFn, nil
}

// NewRootCmd builds the provision command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "provision",
		Short:        "Manage portal accounts out of band",
		SilenceUsage: true,
	}
	cmd.AddCommand(newInviteCmd(), newImportCmd(), newRevokeCmd(), newMigrateCmd())
	return cmd
}

func newInviteCmd() *cobra.Command {
	var email, group string
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Create an account without a password so its owner can register",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(func(e *env) error {
				p := newProvisioner(e.users, e.cfg.AllowedEmailDomain, e.logger)
				created, err := p.Invite(cmd.Context(), Invitation{Email: email, Group: group})
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "invited %s (%s)\n", email, group)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "updated group of %s to %s\n", email, group)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&group, "group", "", "user group")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newImportCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: `Invite every account in a JSON file of [{"email": ..., "group": ...}]`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open %s: %w", file, err)
			}
			defer f.Close()

			invitations, err := decodeInvitations(f)
			if err != nil {
				return err
			}
			return withEnv(func(e *env) error {
				p := newProvisioner(e.users, e.cfg.AllowedEmailDomain, e.logger)
				sum, err := p.Import(cmd.Context(), invitations)
				fmt.Fprintf(cmd.OutOrStdout(), "invited: %d, updated: %d, skipped: %d\n", sum.Created, sum.Updated, sum.Skipped)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the JSON file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newRevokeCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Clear an account's password so it must register again",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(func(e *env) error {
				p := newProvisioner(e.users, e.cfg.AllowedEmailDomain, e.logger)
				if err := p.Revoke(cmd.Context(), email); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "revoked password of %s\n", email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the users table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(func(e *env) error {
				if err := e.db.WithContext(cmd.Context()).AutoMigrate(&model.User{}); err != nil {
					return fmt.Errorf("auto-migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "users table migrated")
				return nil
			})
		},
	}
}

func withEnv(fn func(*env) error) error {
	e, closeFn, err := openEnv()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(e)
}
