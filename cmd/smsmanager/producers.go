// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ManuGH/smsmanager/internal/client"
	"github.com/ManuGH/smsmanager/internal/export"
	smslog "github.com/ManuGH/smsmanager/internal/log"
	"github.com/ManuGH/smsmanager/internal/platform/httpx"
	"github.com/spf13/cobra"
)

// backendOptions locate the REST backend for the operator commands.
type backendOptions struct {
	root    *rootOptions
	url     string
	timeout time.Duration
}

func (o *backendOptions) client(cmd *cobra.Command) (*client.Client, error) {
	cfg, _, err := o.root.load(cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	url := o.url
	if url == "" {
		url = cfg.Dashboard.BackendURL
	}
	timeout := o.timeout
	if timeout <= 0 {
		timeout = cfg.Dashboard.BackendTimeout
	}
	return client.New(url, httpx.NewClient(timeout)), nil
}

func newProducersCmd(root *rootOptions) *cobra.Command {
	opts := &backendOptions{root: root}
	cmd := &cobra.Command{
		Use:   "producers",
		Short: "Inspect producers on a running backend",
	}
	cmd.PersistentFlags().StringVar(&opts.url, "backend", "", "backend base URL (defaults to dashboard.backendUrl)")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "request timeout (defaults to dashboard.backendTimeout)")

	cmd.AddCommand(
		newProducersListCmd(opts),
		newProducersShowCmd(opts),
		newProducersProgressCmd(opts),
		newProducersExportCmd(opts),
	)
	return cmd
}

func newProducersListCmd(opts *backendOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List producers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			list, err := c.ListProducers(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No Producers Found")
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tMESSAGES\tDELAY\tFAILURE\tSENDERS")
			for _, p := range list {
				senders := "max"
				if p.NumSenders != nil {
					senders = fmt.Sprint(*p.NumSenders)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%ds\t%d%%\t%s\n",
					p.ID, p.Name, p.Status, p.NumberMessages, p.AverageSendDelay, p.FailureRate, senders)
			}
			return tw.Flush()
		},
	}
}

func newProducersShowCmd(opts *backendOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one producer as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			p, err := c.GetProducer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func newProducersProgressCmd(opts *backendOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress <id>",
		Short: "Summarise delivery progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			snap, err := export.Take(cmd.Context(), c, args[0], time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			b := snap.Breakdown
			fmt.Fprintf(out, "%s - %s\n", snap.Producer.Name, snap.Producer.Status)
			if b.Empty() {
				_, err := fmt.Fprintln(out, "No Messages Generated Yet")
				return err
			}
			fmt.Fprintf(out, "Messages:  %d\nPending:   %d\nFailed:    %d\nSucceeded: %d\nAverage:   %ds\n",
				b.Total, b.Pending, b.Failed, b.Succeeded, snap.Progress.AverageMessageTime)
			if len(snap.Distribution) == 0 {
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DURATION\tMESSAGES")
			for _, pt := range snap.Distribution {
				fmt.Fprintf(tw, "%ds\t%d\n", pt.X, pt.Y)
			}
			return tw.Flush()
		},
	}
}

func newProducersExportCmd(opts *backendOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a producer and progress snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client(cmd)
			if err != nil {
				return err
			}
			snap, err := export.Take(cmd.Context(), c, args[0], time.Now())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return export.Encode(cmd.OutOrStdout(), snap)
			}
			if err := export.WriteFile(out, snap, smslog.WithComponent("export")); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return err
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
