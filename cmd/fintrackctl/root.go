package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/database"
)

// env is what every subcommand works against. It is opened lazily so that
// --help never touches the database.
type env struct {
	cfg       *config.Config
	db        *database.Manager
	userCache cache.UserCache
	closers   []func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	manager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	e := &env{cfg: cfg, db: manager, userCache: cache.NopUserCache{}}
	e.closers = append(e.closers, func() { _ = manager.Close() })

	if cfg.RedisAddr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			e.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		e.userCache = cache.NewRedisUserCache(client, cfg.UserCacheTTL)
		e.closers = append(e.closers, func() { _ = client.Close() })
	}
	return e, nil
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// withEnv adapts a command body that needs an open env to cobra's RunE.
func withEnv(fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.close()
		return fn(cmd, e, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fintrackctl",
		Short: "Operator tasks for the Fintrack API",
		Long: `fintrackctl manages the Fintrack database outside the HTTP API.

Configuration is read the same way as the server: defaults, the YAML file
named by FINTRACK_CONFIG, then environment variables (and .env).

Example:
  fintrackctl migrate up
  fintrackctl users promote owner@example.com
  fintrackctl audit transaction <id>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newAuditCmd())
	return root
}
