package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/adperf/steward/internal/sanitize"
)

// AnomalyScan flags day-over-day spend swings beyond a relative threshold.
type AnomalyScan struct {
	store *MetricsStore
}

// NewAnomalyScan creates the scan tool over the given metrics store.
func NewAnomalyScan(store *MetricsStore) *AnomalyScan {
	return &AnomalyScan{store: store}
}

func (t *AnomalyScan) Name() string { return "anomaly_scan" }

func (t *AnomalyScan) Description() string {
	return "Scan recent daily spend for day-over-day swings beyond a relative threshold."
}

func (t *AnomalyScan) Schema() map[string]interface{} {
	return map[string]interface{}{
		"campaign": map[string]interface{}{
			"type":        "string",
			"description": "Campaign ID, or \"all\" to scan every campaign",
		},
		"threshold": map[string]interface{}{
			"type":        "number",
			"description": "Relative day-over-day change to flag (default 0.3 = 30%)",
		},
		"window_days": map[string]interface{}{
			"type":        "integer",
			"description": "Trailing window in days (default 14)",
		},
	}
}

func (t *AnomalyScan) Call(ctx context.Context, input json.RawMessage) Result {
	var raw map[string]interface{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &raw); err != nil {
			return Result{Content: fmt.Sprintf("Invalid arguments: %v", err), IsError: true}
		}
	}

	campaign := sanitize.StringArg(raw["campaign"], "all")
	threshold := sanitize.FloatArg(raw["threshold"], 0.3)
	window := sanitize.IntArg(raw["window_days"], 14)
	if threshold <= 0 {
		threshold = 0.3
	}
	if window < 2 {
		window = 14
	}

	var targets []string
	if campaign == "all" {
		ids, err := t.store.Campaigns()
		if err != nil {
			return Result{Content: err.Error(), IsError: true}
		}
		targets = ids
	} else {
		targets = []string{campaign}
	}

	var b strings.Builder
	flagged := 0
	for _, id := range targets {
		metrics, err := t.store.RecentMetrics(id, window)
		if err != nil {
			return Result{Content: err.Error(), IsError: true}
		}
		for i := 1; i < len(metrics); i++ {
			prev, cur := metrics[i-1].Spend, metrics[i].Spend
			if prev == 0 {
				continue
			}
			change := (cur - prev) / prev
			if math.Abs(change) >= threshold {
				flagged++
				fmt.Fprintf(&b, "  %s %s: spend %+.0f%% day-over-day ($%.2f -> $%.2f)\n",
					id, metrics[i].Day, change*100, prev, cur)
			}
		}
	}

	if flagged == 0 {
		return Result{Content: fmt.Sprintf("No spend anomalies above %.0f%% in the last %d day(s).", threshold*100, window)}
	}
	return Result{Content: fmt.Sprintf("Found %d spend anomaly(ies):\n%s", flagged, b.String())}
}
