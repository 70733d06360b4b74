package fabric

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/api"
	promv1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"

	"github.com/fabvis/fabvis/pkg/util"
)

// SiteMetrics holds the per-site health numbers shown alongside the
// topology: host load averages and dataplane throughput.
type SiteMetrics struct {
	Site         string    `json:"site"`
	Load1        float64   `json:"load1"`
	Load5        float64   `json:"load5"`
	Load15       float64   `json:"load15"`
	DataplaneIn  float64   `json:"dataplane_in_bits"`
	DataplaneOut float64   `json:"dataplane_out_bits"`
	CollectedAt  time.Time `json:"collected_at"`
}

// MetricsReader queries a site's Prometheus endpoint for host and
// dataplane metrics.
type MetricsReader struct {
	api promv1.API
}

// NewMetricsReader builds a reader against the given Prometheus base URL.
func NewMetricsReader(endpoint string) (*MetricsReader, error) {
	client, err := api.NewClient(api.Config{Address: endpoint})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client for %s: %w", endpoint, err)
	}
	return &MetricsReader{api: promv1.NewAPI(client)}, nil
}

// SiteMetrics runs the instant queries for one site and aggregates them.
// Individual query failures leave the corresponding field at zero; only a
// fully unreachable endpoint is an error.
func (r *MetricsReader) SiteMetrics(ctx context.Context, site string) (*SiteMetrics, error) {
	m := &SiteMetrics{Site: site, CollectedAt: time.Now().UTC()}

	queries := []struct {
		expr string
		dest *float64
	}{
		{fmt.Sprintf(`avg(node_load1{rack=%q})`, site), &m.Load1},
		{fmt.Sprintf(`avg(node_load5{rack=%q})`, site), &m.Load5},
		{fmt.Sprintf(`avg(node_load15{rack=%q})`, site), &m.Load15},
		{fmt.Sprintf(`sum(dataplaneInBits{rack=%q})`, site), &m.DataplaneIn},
		{fmt.Sprintf(`sum(dataplaneOutBits{rack=%q})`, site), &m.DataplaneOut},
	}

	failures := 0
	for _, q := range queries {
		value, err := r.instant(ctx, q.expr)
		if err != nil {
			util.WithField("site", site).WithError(err).Debug("Metrics query failed")
			failures++
			continue
		}
		*q.dest = value
	}
	if failures == len(queries) {
		return nil, fmt.Errorf("all metrics queries failed for site '%s'", site)
	}
	return m, nil
}

// instant runs one instant query and returns the first sample's value.
func (r *MetricsReader) instant(ctx context.Context, expr string) (float64, error) {
	result, warnings, err := r.api.Query(ctx, expr, time.Now())
	if err != nil {
		return 0, fmt.Errorf("query '%s': %w", expr, err)
	}
	for _, w := range warnings {
		util.Logger.WithField("query", expr).Warn(w)
	}
	vec, ok := result.(model.Vector)
	if !ok || len(vec) == 0 {
		return 0, fmt.Errorf("query '%s' returned no samples", expr)
	}
	return float64(vec[0].Value), nil
}
