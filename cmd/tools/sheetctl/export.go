package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		out    string
		filter string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the published data.json document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := a.service.Document(ctx, a.service.ParseFilter(filter))
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d rounds, %d events)\n", out, len(doc.Schedules), len(doc.CalendarEvents))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data.json", "output path, - for stdout")
	cmd.Flags().StringVar(&filter, "filter", "", "only rounds and events on this date")
	return cmd
}
