package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/roomchat/server/internal/auth"
	"codeberg.org/roomchat/server/internal/storage"
)

const commandTimeout = 30 * time.Second

var errNoDatabase = errors.New("DATABASE_URL (or --database-url) is required")

type app struct {
	cfg    *viper.Viper
	hasher *auth.PasswordHasher

	// opens the repositories for a connection string
	open func(ctx context.Context, connString string) (*storage.Client, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithApp(&app{
		cfg:    viper.New(),
		hasher: auth.NewPasswordHasher(),
		open:   openDatabase,
	})
}

func newRootCmdWithApp(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chatctl",
		Short:         "Administer roomchat users and rooms",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load %s: %w", envFile, err)
				}
			}

			return nil
		},
	}

	rootCmd.PersistentFlags().String("database-url", "", "postgres connection string (default $DATABASE_URL)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file to load first")

	a.cfg.AutomaticEnv()
	_ = a.cfg.BindEnv("database_url", "DATABASE_URL")
	_ = a.cfg.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))

	rootCmd.AddCommand(
		newUserCmd(a),
		newRoomCmd(a),
		newHashCmd(a),
	)

	return rootCmd
}

// opens storage for the configured database
func (a *app) store(ctx context.Context) (*storage.Client, error) {
	return a.open(ctx, a.cfg.GetString("database_url"))
}

func openDatabase(ctx context.Context, connString string) (*storage.Client, error) {
	if connString == "" {
		return nil, errNoDatabase
	}

	return storage.NewClient(ctx, connString)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(ctx, commandTimeout)
}
