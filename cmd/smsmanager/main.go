// SPDX-License-Identifier: MIT

// Command smsmanager runs the producer backend, the dashboard, or both, and
// offers a small operator CLI against a running backend.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/smsmanager/internal/config"
	smslog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/version"
	"github.com/spf13/cobra"
)

const serviceName = "smsmanager"

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          serviceName,
		Short:        "Manage and simulate SMS producers",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("SMS_CONFIG"), "path to config file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCmd(opts),
		newWebCmd(opts),
		newAllCmd(opts),
		newProducersCmd(opts),
		newDBCmd(opts),
		newVersionCmd(),
	)
	return root
}

// load reads the configuration and configures the global logger from it.
// A nil logOut logs to stdout.
func (o *rootOptions) load(logOut io.Writer) (config.Config, *config.Loader, error) {
	loader := config.NewLoader(strings.TrimSpace(o.configPath))
	cfg, err := loader.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	smslog.Configure(smslog.Config{
		Level:   cfg.Log.Level,
		Output:  logOut,
		Service: serviceName,
		Version: version.Version,
	})
	return cfg, loader, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), serviceName, version.String())
			return err
		},
	}
}
