package placement

// PlacementState is the working state of a single allocation pass.
// It is created per call and never shared.
type PlacementState struct {
	// Policy in force for this pass
	Policy CapacityPolicy

	// Census is the running census, updated as each patient is committed
	Census Census

	// NewAssignments counts patients placed on each team during this pass
	NewAssignments map[TeamID]int

	// Closed teams receive nothing
	Closed TeamSet
}

func newPlacementState(policy CapacityPolicy, startingCensus Census, closed TeamSet) *PlacementState {
	state := &PlacementState{
		Policy:         policy,
		Census:         startingCensus.Clone(),
		NewAssignments: make(map[TeamID]int, int(MaxTeamID)),
		Closed:         NewTeamSet(),
	}
	for team, ok := range closed {
		if ok && team.Valid() {
			state.Closed[team] = true
		}
	}
	return state
}

// IsOpen reports whether a team may receive patients
func (s *PlacementState) IsOpen(team TeamID) bool {
	return team.Valid() && !s.Closed.Contains(team)
}

// OpenTeams returns every open team in ascending order
func (s *PlacementState) OpenTeams() []TeamID {
	open := make([]TeamID, 0, int(MaxTeamID))
	for _, t := range AllTeams() {
		if s.IsOpen(t) {
			open = append(open, t)
		}
	}
	return open
}

// RegularOpenTeams returns open teams that are neither IMCU nor overflow
func (s *PlacementState) RegularOpenTeams() []TeamID {
	regular := make([]TeamID, 0, int(MaxTeamID))
	for _, t := range s.OpenTeams() {
		if !s.Policy.IsIMCU(t) && !s.Policy.IsOverflow(t) {
			regular = append(regular, t)
		}
	}
	return regular
}

// IsCapped reports whether a team has reached its own ceiling
func (s *PlacementState) IsCapped(team TeamID) bool {
	return !s.Policy.UnderOwnCap(team, s.Census[team])
}

func (s *PlacementState) commit(team TeamID) {
	s.Census[team]++
	s.NewAssignments[team]++
}
