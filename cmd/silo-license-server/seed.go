package main

import (
	"fmt"
	"net/url"

	"github.com/EternisAI/silo-license/internal/db"
	"github.com/EternisAI/silo-license/internal/licenses"
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var params licenses.CreateParams

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a license directly in the configured store",
		Example: `  silo-license-server seed --owner "Test User" --days 30
  silo-license-server seed --key PRO-TEST --note "local testing"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := db.Open(cmd.Context(), config.Database)
			if err != nil {
				return err
			}
			defer closeStore()

			created, err := licenses.NewService(store, config.License).Create(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to seed license: %w", err)
			}

			fmt.Println("License created")
			fmt.Printf("  Key:     %s\n", created.Key)
			fmt.Printf("  Owner:   %s\n", created.Owner)
			fmt.Printf("  Expires: %s\n", created.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Key, "key", "", "License key (generated when empty)")
	cmd.Flags().StringVar(&params.Owner, "owner", "Test User", "License owner")
	cmd.Flags().IntVar(&params.DaysValid, "days", 30, "Days until the license expires")
	cmd.Flags().StringVar(&params.Note, "note", "", "Free-form note")
	cmd.Flags().StringVar(&params.Prefix, "prefix", "", "Key prefix for generated keys")

	return cmd
}

// redactURL strips credentials from a database URL before it is logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
