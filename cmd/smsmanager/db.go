// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/smsmanager/internal/persistence"
	"github.com/ManuGH/smsmanager/internal/persistence/sqlite"
	"github.com/spf13/cobra"
)

func newDBCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain the producer store",
	}
	cmd.AddCommand(newDBVerifyCmd(root))
	return cmd
}

func newDBVerifyCmd(root *rootOptions) *cobra.Command {
	var (
		path string
		mode string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check SQLite store integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode = strings.ToLower(strings.TrimSpace(mode))
			if mode != "quick" && mode != "full" {
				return fmt.Errorf("invalid mode %q: use quick or full", mode)
			}
			if path == "" {
				cfg, _, err := root.load(cmd.ErrOrStderr())
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if cfg.Store.Backend != persistence.BackendSQLite {
					return fmt.Errorf("store backend is %q; verify only supports sqlite", cfg.Store.Backend)
				}
				path = cfg.Store.Path
			}

			report, err := sqlite.VerifyIntegrity(cmd.Context(), path, mode)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if report.Healthy() {
				_, err := fmt.Fprintf(out, "OK %s (%s check)\n", path, report.Mode)
				return err
			}
			fmt.Fprintf(out, "CORRUPT %s (%s check)\n", path, report.Mode)
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			return errors.New("integrity check failed")
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "SQLite database file (defaults to store.path)")
	cmd.Flags().StringVar(&mode, "mode", "quick", "verification mode: quick or full")
	return cmd
}
