package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/roomchat/server/internal/auth"
)

// prints a password hash for seeding users by hand
func newHashCmd(a *app) *cobra.Command {
	var password, legacySalt string

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the stored form of a password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				return errors.New("password must not be empty")
			}

			if legacySalt != "" {
				if len(legacySalt) != 20 {
					return errors.New("legacy salt must be exactly 20 characters")
				}

				fmt.Fprintln(cmd.OutOrStdout(), auth.LegacyHash(password, legacySalt))
				return nil
			}

			hash, err := a.hasher.Hash(password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)

			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "plain text password")
	cmd.Flags().StringVar(&legacySalt, "legacy-salt", "", "emit the legacy salted sha256 format with this 20 character salt")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
