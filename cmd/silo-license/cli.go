package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var errNotValid = errors.New("license is not valid")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "silo-license",
		Short:         "Activate a license key and verify license tokens",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newActivateCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}

func newActivateCmd() *cobra.Command {
	var (
		server string
		key    string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "activate",
		Short: "Exchange a license key for a signed token",
		Example: `  silo-license activate --server http://localhost:8000 --key PRO-ABCDEF123456
  silo-license activate --server http://localhost:8000 --key PRO-ABCDEF123456 --out license.token`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient(server).Activate(cmd.Context(), key)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Status:  %s\n", resp.Status)
			if resp.Message != "" {
				fmt.Fprintf(w, "Message: %s\n", resp.Message)
			}
			if resp.Token == "" {
				return errNotValid
			}
			if resp.ExpiresAt != nil {
				fmt.Fprintf(w, "Expires: %s\n", resp.ExpiresAt.Format(time.RFC3339))
			}

			if out != "" {
				if err := os.WriteFile(out, []byte(resp.Token+"\n"), 0600); err != nil {
					return fmt.Errorf("failed to write token: %w", err)
				}
				fmt.Fprintf(w, "Token written to %s\n", out)
				return nil
			}
			fmt.Fprintf(w, "Token:   %s\n", resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "License server URL (e.g., http://localhost:8000)")
	cmd.Flags().StringVar(&key, "key", "", "License key")
	cmd.Flags().StringVar(&out, "out", "", "Write the token to this file instead of stdout")
	_ = cmd.MarkFlagRequired("server")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		server    string
		token     string
		tokenFile string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a license token against the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tokenFile != "" {
				raw, err := readTokenFile(tokenFile)
				if err != nil {
					return err
				}
				token = raw
			}
			if token == "" {
				return fmt.Errorf("--token or --token-file is required")
			}

			resp, err := newClient(server).Verify(cmd.Context(), token)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !resp.Valid {
				fmt.Fprintf(w, "Invalid: %s\n", resp.Reason)
				return errNotValid
			}
			fmt.Fprintln(w, "Valid")
			fmt.Fprintf(w, "  Key:     %s\n", resp.Key)
			fmt.Fprintf(w, "  Owner:   %s\n", resp.Owner)
			if resp.Expires != nil {
				fmt.Fprintf(w, "  Expires: %s\n", resp.Expires.Format(time.RFC3339))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "License server URL")
	cmd.Flags().StringVar(&token, "token", "", "License token")
	cmd.Flags().StringVar(&tokenFile, "token-file", "", "Read the token from this file")
	cmd.MarkFlagsMutuallyExclusive("token", "token-file")
	_ = cmd.MarkFlagRequired("server")

	return cmd
}

func readTokenFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open token file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
