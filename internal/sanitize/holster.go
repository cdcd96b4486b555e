package sanitize

import "github.com/adperf/steward/pkg/models"

// ToolPolicy is the read-only roster policy the holster works from. The
// shared policy is configuration; CapabilitiesFor computes a fresh per-turn
// view and never mutates it.
type ToolPolicy struct {
	// Allow maps each roster role to the tool names it may use.
	Allow map[models.Role][]string
	// Deny lists tool names removed for every role this turn. Applied
	// after the per-role allow list.
	Deny []string
}

// CapabilitiesFor computes the allowed tool set for one agent invocation.
// Pure function: same role and policy always yield the same set, in a
// stable order. Tools absent from the result are physically excluded from
// what the agent can attempt to call (the "holster" layer).
func CapabilitiesFor(role models.Role, policy ToolPolicy) []string {
	allowed := policy.Allow[role]
	if len(allowed) == 0 {
		return nil
	}

	denied := make(map[string]bool, len(policy.Deny))
	for _, name := range policy.Deny {
		denied[name] = true
	}

	out := make([]string, 0, len(allowed))
	for _, name := range allowed {
		if !denied[name] {
			out = append(out, name)
		}
	}
	return out
}
