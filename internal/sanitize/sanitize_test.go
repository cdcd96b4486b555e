package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/adperf/steward/pkg/models"
)

func TestCoerceArgs_SingleElementList(t *testing.T) {
	out := CoerceArgs(json.RawMessage(`{"query": ["lilly"]}`))

	// Coerced bundle must decode cleanly into a strict-typed struct.
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(out, &params); err != nil {
		t.Fatalf("typed decode of coerced args failed: %v", err)
	}
	if params.Query != "lilly" {
		t.Errorf("query = %q, want %q", params.Query, "lilly")
	}
}

func TestCoerceArgs_SingleElementListWouldCrashTypedDecode(t *testing.T) {
	// Sanity check on the crash class itself: without the middleware,
	// strict decoding of the same bundle fails.
	raw := json.RawMessage(`{"query": ["lilly"]}`)
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(raw, &params); err == nil {
		t.Fatal("expected typed decode of uncoerced list to fail")
	}
}

func TestCoerceArgs_NullDropped(t *testing.T) {
	out := CoerceArgs(json.RawMessage(`{"campaign": "cmp-1", "window": null}`))

	var args map[string]interface{}
	if err := json.Unmarshal(out, &args); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if _, present := args["window"]; present {
		t.Error("null argument should be dropped")
	}
	if args["campaign"] != "cmp-1" {
		t.Errorf("campaign = %v, want cmp-1", args["campaign"])
	}
}

func TestCoerceArgs_NestedSingleElementLists(t *testing.T) {
	out := CoerceArgs(json.RawMessage(`{"query": [["lilly"]]}`))

	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(out, &params); err != nil {
		t.Fatalf("typed decode failed: %v", err)
	}
	if params.Query != "lilly" {
		t.Errorf("query = %q, want %q", params.Query, "lilly")
	}
}

func TestCoerceArgs_MultiElementListPreserved(t *testing.T) {
	out := CoerceArgs(json.RawMessage(`{"campaigns": ["cmp-1", "cmp-2"]}`))

	var params struct {
		Campaigns []string `json:"campaigns"`
	}
	if err := json.Unmarshal(out, &params); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(params.Campaigns) != 2 {
		t.Errorf("multi-element list was altered: %v", params.Campaigns)
	}
}

func TestCoerceArgs_NonObjectPassThrough(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `[1,2,3]`, `not json`, ``} {
		out := CoerceArgs(json.RawMessage(raw))
		if string(out) != raw {
			t.Errorf("non-object input %q was altered to %q", raw, out)
		}
	}
}

func TestCoerceArgs_Deterministic(t *testing.T) {
	in := json.RawMessage(`{"b": ["2"], "a": null, "c": "x"}`)
	first := CoerceArgs(in)
	second := CoerceArgs(in)
	if string(first) != string(second) {
		t.Errorf("coercion not deterministic: %q vs %q", first, second)
	}
}

func TestStringArg(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		def  string
		want string
	}{
		{"plain string", "lilly", "d", "lilly"},
		{"single-element list", []interface{}{"lilly"}, "d", "lilly"},
		{"nil uses default", nil, "d", "d"},
		{"empty string uses default", "", "d", "d"},
		{"integer number", float64(42), "d", "42"},
		{"fractional number", 1.5, "d", "1.5"},
		{"bool", true, "d", "true"},
		{"nested single-element list", []interface{}{[]interface{}{"x"}}, "d", "x"},
		{"list of nil uses default", []interface{}{nil}, "d", "d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StringArg(tt.in, tt.def); got != tt.want {
				t.Errorf("StringArg(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIntArg(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		def  int
		want int
	}{
		{"number", float64(7), 1, 7},
		{"numeric string", "7", 1, 7},
		{"single-element list", []interface{}{float64(7)}, 1, 7},
		{"nil uses default", nil, 14, 14},
		{"garbage string uses default", "soon", 14, 14},
		{"bool true", true, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntArg(tt.in, tt.def); got != tt.want {
				t.Errorf("IntArg(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFloatArg(t *testing.T) {
	if got := FloatArg([]interface{}{"0.85"}, 0); got != 0.85 {
		t.Errorf("FloatArg list of numeric string = %v, want 0.85", got)
	}
	if got := FloatArg(nil, 1.0); got != 1.0 {
		t.Errorf("FloatArg(nil) = %v, want default", got)
	}
}

func TestCapabilitiesFor(t *testing.T) {
	policy := ToolPolicy{
		Allow: map[models.Role][]string{
			models.RoleMonitor:    {"metrics_lookup", "anomaly_scan"},
			models.RoleForecaster: {"metrics_lookup", "spend_forecast"},
		},
		Deny: []string{"anomaly_scan"},
	}

	got := CapabilitiesFor(models.RoleMonitor, policy)
	if len(got) != 1 || got[0] != "metrics_lookup" {
		t.Errorf("monitor capabilities = %v, want [metrics_lookup]", got)
	}

	got = CapabilitiesFor(models.RoleForecaster, policy)
	if len(got) != 2 {
		t.Errorf("forecaster capabilities = %v, want 2 tools", got)
	}

	// Role with no allow list gets nothing.
	if got := CapabilitiesFor(models.RoleOptimizer, policy); got != nil {
		t.Errorf("optimizer capabilities = %v, want nil", got)
	}
}

func TestCapabilitiesFor_DoesNotMutatePolicy(t *testing.T) {
	policy := ToolPolicy{
		Allow: map[models.Role][]string{
			models.RoleMonitor: {"metrics_lookup", "anomaly_scan"},
		},
		Deny: []string{"anomaly_scan"},
	}

	_ = CapabilitiesFor(models.RoleMonitor, policy)

	if len(policy.Allow[models.RoleMonitor]) != 2 {
		t.Error("shared allow list was mutated")
	}
}

func TestCapabilitiesFor_Deterministic(t *testing.T) {
	policy := ToolPolicy{
		Allow: map[models.Role][]string{
			models.RoleMonitor: {"a", "b", "c"},
		},
	}
	first := CapabilitiesFor(models.RoleMonitor, policy)
	second := CapabilitiesFor(models.RoleMonitor, policy)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("capability order unstable: %v vs %v", first, second)
		}
	}
}
