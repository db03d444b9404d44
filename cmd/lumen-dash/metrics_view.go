package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"lumen/pkg/metrics"
	"lumen/pkg/store"
)

// renderMetrics renders the aggregated metrics panel. Sentinel (nil) values
// render as "n/a"; series render compactly.
func renderMetrics(values store.AggregateResponse, styles Styles) string {
	if values == nil {
		return styles.Sentinel.Render("  loading metrics…")
	}
	var b strings.Builder
	for _, name := range metrics.AllMetrics() {
		v, ok := values[name]
		if !ok {
			continue
		}
		b.WriteString("  ")
		b.WriteString(styles.MetricName.Render(fmt.Sprintf("%-32s", name)))
		if v == nil {
			b.WriteString(styles.Sentinel.Render("n/a"))
		} else {
			b.WriteString(styles.MetricValue.Render(formatMetric(name, v)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatMetric renders one metric value for the panel.
func formatMetric(name string, v any) string {
	switch val := v.(type) {
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		// Aggregate responses decode numbers as float64; counts print whole.
		if name == metrics.MetricTotalNbTasks {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%.1f%%", val*100)
	case string:
		return val
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return compactSeries(string(data))
	}
}

// compactSeries trims long series renderings to one line.
func compactSeries(s string) string {
	const maxLen = 80
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}
