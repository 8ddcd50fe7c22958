package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"appointment-workers/internal/sheet"
)

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch all tabs once and save them for offline replay",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			snap, err := a.loader.Load(ctx, true)
			if err != nil {
				return err
			}
			if err := sheet.WriteSnapshotFile(out, snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved snapshot %s to %s (%d input rows)\n", snap.ID, out, len(snap.Input))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "snapshot.json", "output path")
	return cmd
}
