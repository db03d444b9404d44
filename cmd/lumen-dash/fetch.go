package main

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"lumen/pkg/filter"
	"lumen/pkg/metrics"
	"lumen/pkg/reqcache"
	"lumen/pkg/store"
)

// fetchTimeout bounds one dashboard refresh round trip.
const fetchTimeout = 10 * time.Second

// fetchCmd returns a tea.Cmd that fetches the project, its tasks/sessions
// and every dashboard metric for the given filter. Aggregations go through
// the request cache so concurrent views requesting the same metric share one
// computation. The seq travels with the result so stale snapshots are
// dropped by Update.
func fetchCmd(client store.Client, cache *reqcache.Cache, cfg *dashConfig, flt filter.Filter, seq uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		project, err := client.Project(ctx, cfg.ProjectID)
		if err != nil {
			return errMsg{seq: seq, err: err}
		}
		tasks, err := client.Tasks(ctx, cfg.ProjectID)
		if err != nil {
			return errMsg{seq: seq, err: err}
		}
		sessions, err := client.Sessions(ctx, cfg.ProjectID)
		if err != nil {
			return errMsg{seq: seq, err: err}
		}

		values := make(store.AggregateResponse, len(metrics.AllMetrics()))
		for _, name := range metrics.AllMetrics() {
			name := name
			key := reqcache.Key{
				ProjectID: cfg.ProjectID,
				Metric:    name,
				Filter:    flt.Key(),
				Window:    metrics.Window{}.Key(),
			}
			v, err := cache.Get(ctx, key, func(ctx context.Context) (any, error) {
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
				// One degraded metric must not fail the others.
				values[name] = nil
				continue
			}
			values[name] = v
		}

		return dataMsg{
			seq:      seq,
			project:  project,
			tasks:    filter.Apply(flt, tasks),
			sessions: sessions,
			metrics:  values,
		}
	}
}
