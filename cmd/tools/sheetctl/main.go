// cmd/tools/sheetctl/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath   string
	snapshotPath string
	logLevel     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sheetctl",
		Short:         "Operate the appointment schedule sheet pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: configs/config.yaml lookup)")
	root.PersistentFlags().StringVar(&opts.snapshotPath, "snapshot", "", "read rows from a saved snapshot file instead of the sheet")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newExportCmd(opts),
		newEvaluateCmd(opts),
		newSnapshotCmd(opts),
		newRegistryCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
