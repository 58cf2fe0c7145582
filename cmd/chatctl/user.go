package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/roomchat/server/roomchat/users"
)

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	userCmd.AddCommand(newUserAddCmd(a))

	return userCmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user with a bcrypt hashed password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			username = strings.TrimSpace(username)
			if username == "" {
				return errors.New("username must not be blank")
			}

			if password == "" {
				return errors.New("password must not be empty")
			}

			hash, err := a.hasher.Hash(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			user, err := store.Users.Create(ctx, username, hash)
			if errors.Is(err, users.ErrUsernameTaken) {
				return fmt.Errorf("user %q already exists", username)
			}

			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", user.Username)

			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "plain text password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
