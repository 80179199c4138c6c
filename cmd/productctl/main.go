// Command productctl computes dashboard views and exports from the command
// line, without starting the web server.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"product-dashboard/internal/aggregate"
	"product-dashboard/internal/config"
	"product-dashboard/internal/export"
	"product-dashboard/internal/observability"
	"product-dashboard/internal/services"
	"product-dashboard/internal/source"
)

type options struct {
	kind    string
	url     string
	file    string
	timeout time.Duration
	period  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "productctl",
		Short:        "Query and export product analytics",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.kind, "source", "", "product source: http or static (default from SOURCE_KIND)")
	flags.StringVar(&opts.url, "url", "", "upstream URL for the http source")
	flags.StringVar(&opts.file, "file", "", "JSON file for the static source; empty uses the bundled data")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "fetch timeout")
	flags.StringVar(&opts.period, "period", "all", "period window: all, 1m, 3m, 6m, 1y")

	root.AddCommand(newExportCmd(opts), newSummaryCmd(opts), newTopCmd(opts))
	return root
}

// load fetches one snapshot, applying flag overrides on top of the
// environment configuration.
func load(ctx context.Context, stderr io.Writer, opts *options) (*services.Analytics, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.kind != "" {
		cfg.Source.Kind = opts.kind
	}
	if opts.url != "" {
		cfg.Source.URL = opts.url
	}
	if opts.file != "" {
		cfg.Source.Kind = "static"
		cfg.Source.StaticPath = opts.file
	}
	cfg.Source.Timeout = opts.timeout

	cfg.Logger.Format = "text"
	logger := observability.NewLoggerTo(stderr, cfg.Logger)

	src, err := source.FromConfig(cfg.Source)
	if err != nil {
		return nil, err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	products, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch products from %s: %w", src.Name(), err)
	}
	logger.Debug("products fetched", "source", src.Name(), "count", len(products))

	analytics := services.NewAnalytics(cfg.Insights.Thresholds())
	analytics.SetLogger(logger)
	analytics.SetData(products, src.Name())
	return analytics, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		fields string
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export products as csv, json or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			window, err := aggregate.ParseWindow(opts.period)
			if err != nil {
				return err
			}
			var names []string
			for _, n := range strings.Split(fields, ",") {
				if n = strings.TrimSpace(n); n != "" {
					names = append(names, n)
				}
			}

			analytics, err := load(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			snap, err := analytics.Snapshot()
			if err != nil {
				return err
			}
			table, err := export.Select(aggregate.FilterByPeriod(snap.Products, window, time.Now()), names, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if output != "" && output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}
			if err := export.Write(out, f, table); err != nil {
				return err
			}
			if output != "" && output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d products to %s\n", len(table.Records), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv, json or xlsx")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated fields; empty exports all of "+strings.Join(export.Fields(), ","))
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of products; 0 exports all")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for stdout")
	return cmd
}

func newSummaryCmd(opts *options) *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := aggregate.ParseWindow(opts.period)
			if err != nil {
				return err
			}
			analytics, err := load(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			d, err := analytics.Dashboard(cmd.Context(), window)
			if err != nil {
				return err
			}
			if full {
				return printJSON(cmd.OutOrStdout(), d)
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"window":     d.Window,
				"summary":    d.Summary,
				"categories": d.Categories,
			})
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "print every dashboard section")
	return cmd
}

func newTopCmd(opts *options) *cobra.Command {
	var (
		field string
		dir   string
		n     int
	)
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Rank products by a numeric field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := aggregate.ParseField(field)
			if err != nil {
				return err
			}
			d, err := aggregate.ParseDirection(dir)
			if err != nil {
				return err
			}
			analytics, err := load(cmd.Context(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			items, err := analytics.Top(f, d, n)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, p := range items {
				v, _ := f.Extract(p)
				fmt.Fprintf(w, "%2d. %-40s %s=%g\n", i+1, p.Name, f.Name, v)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "sales", "field to rank by")
	cmd.Flags().StringVar(&dir, "dir", "desc", "sort direction: asc or desc")
	cmd.Flags().IntVarP(&n, "limit", "n", 10, "number of products")
	return cmd
}
