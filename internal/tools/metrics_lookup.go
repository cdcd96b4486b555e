package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adperf/steward/internal/sanitize"
)

// MetricsLookup returns raw daily delivery rows for a campaign.
type MetricsLookup struct {
	store *MetricsStore
}

// NewMetricsLookup creates the lookup tool over the given metrics store.
func NewMetricsLookup(store *MetricsStore) *MetricsLookup {
	return &MetricsLookup{store: store}
}

func (t *MetricsLookup) Name() string { return "metrics_lookup" }

func (t *MetricsLookup) Description() string {
	return "Raw daily delivery metrics (impressions, clicks, spend) for a campaign over a trailing window."
}

func (t *MetricsLookup) Schema() map[string]interface{} {
	return map[string]interface{}{
		"campaign": map[string]interface{}{
			"type":        "string",
			"description": "Campaign ID, or \"all\" to list known campaigns",
		},
		"window_days": map[string]interface{}{
			"type":        "integer",
			"description": "Trailing window in days (default 7)",
		},
	}
}

func (t *MetricsLookup) Call(ctx context.Context, input json.RawMessage) Result {
	var raw map[string]interface{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &raw); err != nil {
			return Result{Content: fmt.Sprintf("Invalid arguments: %v", err), IsError: true}
		}
	}

	campaign := sanitize.StringArg(raw["campaign"], "all")
	window := sanitize.IntArg(raw["window_days"], 7)
	if window < 1 {
		window = 7
	}

	if campaign == "all" {
		ids, err := t.store.Campaigns()
		if err != nil {
			return Result{Content: err.Error(), IsError: true}
		}
		if len(ids) == 0 {
			return Result{Content: "No campaigns in the metrics store"}
		}
		return Result{Content: "Known campaigns:\n  " + strings.Join(ids, "\n  ")}
	}

	metrics, err := t.store.RecentMetrics(campaign, window)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}
	if len(metrics) == 0 {
		return Result{Content: fmt.Sprintf("No metrics recorded for campaign %s", campaign)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Daily metrics for %s (last %d day(s)):\n", campaign, len(metrics))
	fmt.Fprintf(&b, "%-12s %12s %8s %10s\n", "day", "impressions", "clicks", "spend")
	for _, m := range metrics {
		fmt.Fprintf(&b, "%-12s %12d %8d %10.2f\n", m.Day, m.Impressions, m.Clicks, m.Spend)
	}
	return Result{Content: b.String()}
}
