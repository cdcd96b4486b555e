package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adperf/steward/internal/sanitize"
)

// PacingReport summarizes budget pacing for one campaign: actual spend vs.
// budgeted spend over a trailing window.
type PacingReport struct {
	store *MetricsStore
}

// NewPacingReport creates the pacing tool over the given metrics store.
func NewPacingReport(store *MetricsStore) *PacingReport {
	return &PacingReport{store: store}
}

func (t *PacingReport) Name() string { return "pacing_report" }

func (t *PacingReport) Description() string {
	return "Budget pacing summary for a campaign: spend vs. budget over a trailing window, with a pace ratio."
}

func (t *PacingReport) Schema() map[string]interface{} {
	return map[string]interface{}{
		"campaign": map[string]interface{}{
			"type":        "string",
			"description": "Campaign ID to report on",
		},
		"window_days": map[string]interface{}{
			"type":        "integer",
			"description": "Trailing window in days (default 7)",
		},
	}
}

// Call computes the pacing summary. Arguments are coerced individually;
// the tool never assumes its caller validated shapes.
func (t *PacingReport) Call(ctx context.Context, input json.RawMessage) Result {
	var raw map[string]interface{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &raw); err != nil {
			return Result{Content: fmt.Sprintf("Invalid arguments: %v", err), IsError: true}
		}
	}

	campaign := sanitize.StringArg(raw["campaign"], "")
	window := sanitize.IntArg(raw["window_days"], 7)
	if window < 1 {
		window = 7
	}
	if campaign == "" {
		return Result{Content: "Missing required argument: campaign", IsError: true}
	}

	budget, err := t.store.DailyBudget(campaign)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}
	metrics, err := t.store.RecentMetrics(campaign, window)
	if err != nil {
		return Result{Content: err.Error(), IsError: true}
	}
	if len(metrics) == 0 {
		return Result{Content: fmt.Sprintf("No metrics recorded for campaign %s", campaign)}
	}

	var spend float64
	for _, m := range metrics {
		spend += m.Spend
	}
	budgeted := budget * float64(len(metrics))
	pace := 0.0
	if budgeted > 0 {
		pace = spend / budgeted
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Campaign %s pacing over last %d day(s):\n", campaign, len(metrics))
	fmt.Fprintf(&b, "  spend:    $%.2f\n", spend)
	fmt.Fprintf(&b, "  budgeted: $%.2f ($%.2f/day)\n", budgeted, budget)
	fmt.Fprintf(&b, "  pace:     %.0f%%", pace*100)
	switch {
	case pace > 1.10:
		b.WriteString(" (OVERSPENDING)")
	case pace < 0.90:
		b.WriteString(" (underspending)")
	default:
		b.WriteString(" (on track)")
	}

	return Result{Content: b.String()}
}
