package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"lumen/pkg/metrics"
	"lumen/pkg/model"
	"lumen/pkg/reqcache"
	"lumen/pkg/store"
)

// newMetricsCmd creates the "lumen metrics" subcommand.
func newMetricsCmd() *cobra.Command {
	var (
		flagValue  string
		eventValue string
		names      []string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Compute aggregated dashboard metrics over the filtered task set",
		RunE: func(cmd *cobra.Command, args []string) error {
			flt, err := parseFilter(flagValue, eventValue)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				names = metrics.AllMetrics()
			}
			for _, name := range names {
				if !metrics.Known(name) {
					return &model.ValidationError{Field: "metric", Value: name, Reason: "unknown metric"}
				}
			}

			cfg, client, closer, err := loadConfigAndClient()
			if err != nil {
				return err
			}
			defer closer() //nolint:errcheck // best-effort close

			// One aggregation request per metric, deduplicated and memoized
			// exactly as the dashboard does it.
			cache := reqcache.New()
			values := make(map[string]any, len(names))
			for _, name := range names {
				name := name
				key := reqcache.Key{
					ProjectID: cfg.ProjectID,
					Metric:    name,
					Filter:    flt.Key(),
					Window:    metrics.Window{}.Key(),
				}
				v, err := cache.Get(cmd.Context(), key, func(ctx context.Context) (any, error) {
					resp, err := client.Aggregate(ctx, cfg.ProjectID, store.AggregateRequest{
						Metrics:     []string{name},
						TasksFilter: flt,
					})
					if err != nil {
						return nil, err
					}
					return resp[name], nil
				})
				if err != nil {
					return err
				}
				values[name] = v
			}

			if asJSON {
				data, err := json.MarshalIndent(values, "", "  ")
				if err != nil {
					return fmt.Errorf("encode metrics: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\n", name, renderMetricValue(values[name]))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flagValue, "flag", "", "filter by flag: success, failure or unset")
	cmd.Flags().StringVar(&eventValue, "event", "", "filter by attached event name")
	cmd.Flags().StringSliceVar(&names, "metric", nil, "metric names (default: all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON instead of a table")

	return cmd
}

// renderMetricValue formats a metric value for the table view. Sentinels
// print as "n/a"; series print as compact JSON.
func renderMetricValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "n/a"
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%.4f", val)
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
