package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adperf/steward/internal/sanitize"
)

// SpendForecast projects spend forward using the trailing-window daily
// average. Deliberately simple; the contract is the interesting part, not
// the math.
type SpendForecast struct {
	store *MetricsStore
}

// NewSpendForecast creates the forecast tool over the given metrics store.
func NewSpendForecast(store *MetricsStore) *SpendForecast {
	return &SpendForecast{store: store}
}

func (t *SpendForecast) Name() string { return "spend_forecast" }

func (t *SpendForecast) Description() string {
	return "Project campaign spend over a forward horizon from the trailing daily average, compared to budget."
}

func (t *SpendForecast) Schema() map[string]interface{} {
	return map[string]interface{}{
		"campaign": map[string]interface{}{
			"type":        "string",
			"description": "Campaign ID to forecast",
		},
		"horizon_days": map[string]interface{}{
			"type":        "integer",
			"description": "Days to project forward (default 7)",
		},
		"window_days": map[string]interface{}{
			"type":        "integer",
			"description": "Trailing window used for the average (default 7)",
		},
	}
}

func (t *SpendForecast) Call(ctx context.Context, input json.RawMessage) Result {
	var raw map[string]interface{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &raw); err != nil {
			return Result{Content: fmt.Sprintf("Invalid arguments: %v", err), IsError: true}
		}
	}

	campaign := sanitize.StringArg(raw["campaign"], "")
	horizon := sanitize.IntArg(raw["horizon_days"], 7)
	window := sanitize.IntArg(raw["window_days"], 7)
	if campaign == "" {
		return Result{Content: "Missing required argument: campaign", IsError: true}
	}
	if horizon < 1 {
		horizon = 7
	}
	if window < 1 {
		window = 7
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
	dailyAvg := spend / float64(len(metrics))
	projected := dailyAvg * float64(horizon)
	budgeted := budget * float64(horizon)

	content := fmt.Sprintf(
		"Forecast for %s over next %d day(s):\n  projected spend: $%.2f ($%.2f/day avg over last %d day(s))\n  budgeted:        $%.2f",
		campaign, horizon, projected, dailyAvg, len(metrics), budgeted)
	if budgeted > 0 && projected > budgeted*1.05 {
		content += fmt.Sprintf("\n  projected to exceed budget by $%.2f", projected-budgeted)
	}
	return Result{Content: content}
}
