package placement

// Constraint vetoes a geographic team for a patient.
// If ANY constraint returns false the team is not a valid candidate.
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// IsTeamValid decides whether team may take patient given the other open
	// geographic teams for the patient's floor
	IsTeamValid(state *PlacementState, patient Patient, team TeamID, geoTeams []TeamID) bool
}

// DefaultConstraints returns the constraints applied to geographic candidates, in order
func DefaultConstraints() []Constraint {
	return []Constraint{
		IMCUHardCapConstraint{},
		SoftCapConstraint{},
		EquitySpreadConstraint{},
	}
}

// IMCUHardCapConstraint excludes IMCU teams that are at their hard cap
type IMCUHardCapConstraint struct{}

func (IMCUHardCapConstraint) Name() string {
	return "IMCUHardCap"
}

func (IMCUHardCapConstraint) IsTeamValid(state *PlacementState, _ Patient, team TeamID, _ []TeamID) bool {
	return !state.Policy.AtHardCap(team, state.Census[team])
}

// SoftCapConstraint excludes a non-IMCU team at or over the soft cap, but only while
// another geographic team is still under its own cap
type SoftCapConstraint struct{}

func (SoftCapConstraint) Name() string {
	return "SoftCap"
}

func (SoftCapConstraint) IsTeamValid(state *PlacementState, _ Patient, team TeamID, geoTeams []TeamID) bool {
	if state.Policy.IsIMCU(team) || state.Census[team] < state.Policy.SoftCap {
		return true
	}
	for _, other := range geoTeams {
		if other != team && !state.IsCapped(other) {
			return false
		}
	}
	return true
}

// EquitySpreadConstraint excludes a team that already took MaxNewBeforeSpread new
// patients in this pass while an uncapped geographic sibling took fewer
type EquitySpreadConstraint struct{}

const equitySpreadName = "EquitySpread"

func (EquitySpreadConstraint) Name() string {
	return equitySpreadName
}

func (EquitySpreadConstraint) IsTeamValid(state *PlacementState, _ Patient, team TeamID, geoTeams []TeamID) bool {
	taken := state.NewAssignments[team]
	if taken < state.Policy.MaxNewBeforeSpread {
		return true
	}
	for _, other := range geoTeams {
		if other != team && state.NewAssignments[other] < taken && !state.IsCapped(other) {
			return false
		}
	}
	return true
}
