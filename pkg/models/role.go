package models

// Role identifies a specialist agent in the roster.
type Role string

const (
	// RoleMonitor watches delivery metrics and flags anomalies.
	RoleMonitor Role = "monitor"
	// RoleDiagnostician investigates technical issues (tracking, feeds, integrations).
	RoleDiagnostician Role = "diagnostician"
	// RoleOptimizer recommends bid and budget adjustments.
	RoleOptimizer Role = "optimizer"
	// RoleForecaster projects pacing and spend.
	RoleForecaster Role = "forecaster"
)

// NodeSupervisor is the routing hub; it is not a roster role.
const NodeSupervisor = "supervisor"

// NodeFinish is the terminal sentinel emitted by the supervisor when the
// turn is complete.
const NodeFinish = "FINISH"

// AllRoles returns the roster in its canonical order.
func AllRoles() []Role {
	return []Role{RoleMonitor, RoleDiagnostician, RoleOptimizer, RoleForecaster}
}

// Valid returns true if the role is a known roster member.
func (r Role) Valid() bool {
	switch r {
	case RoleMonitor, RoleDiagnostician, RoleOptimizer, RoleForecaster:
		return true
	default:
		return false
	}
}

// ValidNext returns true if s is a legal value for a routing decision's
// next field: a roster role or the terminal sentinel.
func ValidNext(s string) bool {
	return s == NodeFinish || Role(s).Valid()
}
