package placement

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Allocator places new admissions on teams using geography, capacity and balance rules.
// It is a single greedy pass: earlier decisions are never revisited.
type Allocator struct {
	geography   *Geography
	policy      CapacityPolicy
	constraints []Constraint
}

// NewAllocator creates an Allocator with the default constraints
func NewAllocator(geography *Geography, policy CapacityPolicy) (*Allocator, error) {
	if geography == nil {
		return nil, errors.New("geography is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capacity policy: %w", err)
	}
	return &Allocator{
		geography:   geography,
		policy:      policy,
		constraints: DefaultConstraints(),
	}, nil
}

// PlacementOutcome is the result of one allocation pass
type PlacementOutcome struct {
	// Assignments in processing order
	Assignments []Assignment

	// Skipped patients could not be placed on any team
	Skipped []SkippedPatient

	// Notes are informational (e.g. a location with no recognised floor)
	Notes []string

	StartingCensus Census
	FinalCensus    Census
	NewAssignments map[TeamID]int
	ClosedTeams    TeamSet

	// ValidationErrors from checking the final state; empty on a healthy run
	ValidationErrors []ValidationError
}

// GeographicCount returns how many assignments matched the patient's floor
func (o *PlacementOutcome) GeographicCount() int {
	count := 0
	for _, a := range o.Assignments {
		if a.IsGeographic {
			count++
		}
	}
	return count
}

// Priority bands, lower is processed first
const (
	priorityIMCUNeed = iota
	priorityOutlier
	priorityGeographic
)

// PatientPriority returns the processing band for a patient.
// IMCU-need patients (3W, IMCU) come first, then outliers with no usable floor so
// they balance the census before geography-driven patients arrive, then everyone else.
func (a *Allocator) PatientPriority(p Patient) int {
	if p.Floor.NeedsIMCU() {
		return priorityIMCUNeed
	}
	if p.Floor == FloorNone || len(a.geography.GeographicTeams(p.Floor)) == 0 {
		return priorityOutlier
	}
	return priorityGeographic
}

// SortPatients returns the patients in processing order: priority band, then floor
// label (no floor last within its band), then identifier
func (a *Allocator) SortPatients(patients []Patient) []Patient {
	sorted := slices.Clone(patients)
	slices.SortStableFunc(sorted, func(x, y Patient) int {
		if c := cmp.Compare(a.PatientPriority(x), a.PatientPriority(y)); c != 0 {
			return c
		}
		if c := cmp.Compare(noFloorRank(x), noFloorRank(y)); c != 0 {
			return c
		}
		if c := cmp.Compare(x.Floor, y.Floor); c != 0 {
			return c
		}
		return cmp.Compare(x.ID, y.ID)
	})
	return sorted
}

func noFloorRank(p Patient) int {
	if p.Floor == FloorNone {
		return 1
	}
	return 0
}

// Allocate assigns each patient to a team.
//
// The starting census is copied, never modified. Census entries for teams outside the
// universe and closed team IDs outside 1..15 are ignored. A negative census or a
// duplicate patient ID is a caller bug and returns an error; anything wrong with the
// patient data itself is reported in the outcome instead.
func (a *Allocator) Allocate(patients []Patient, startingCensus Census, closedTeams TeamSet) (*PlacementOutcome, error) {
	if err := startingCensus.Validate(); err != nil {
		return nil, fmt.Errorf("invalid starting census: %w", err)
	}
	seen := make(map[string]bool, len(patients))
	for _, p := range patients {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate patient identifier %q", p.ID)
		}
		seen[p.ID] = true
	}

	state := newPlacementState(a.policy, startingCensus, closedTeams)
	outcome := &PlacementOutcome{
		Assignments:    make([]Assignment, 0, len(patients)),
		Skipped:        []SkippedPatient{},
		Notes:          []string{},
		StartingCensus: startingCensus.Clone(),
		ClosedTeams:    state.Closed,
	}

	for _, patient := range a.SortPatients(patients) {
		if note := a.floorNote(patient); note != "" {
			outcome.Notes = append(outcome.Notes, note)
		}

		assignment, ok := a.place(state, patient)
		if !ok {
			outcome.Skipped = append(outcome.Skipped, SkippedPatient{
				Patient: patient,
				Warning: fmt.Sprintf("no open team available for %s (%s)", patient.ID, patient.RawLocation),
			})
			continue
		}

		state.commit(assignment.Team)
		outcome.Assignments = append(outcome.Assignments, assignment)
	}

	outcome.FinalCensus = state.Census
	outcome.NewAssignments = state.NewAssignments
	outcome.ValidationErrors = ValidatePlacement(a.policy, patients, outcome)

	return outcome, nil
}

func (a *Allocator) floorNote(p Patient) string {
	if p.Floor == FloorNone {
		return fmt.Sprintf("%s (%s): no floor recognised, any team is acceptable", p.ID, p.RawLocation)
	}
	if len(a.geography.GeographicTeams(p.Floor)) == 0 {
		return fmt.Sprintf("%s (%s): floor %s has no covering team", p.ID, p.RawLocation, p.Floor)
	}
	return ""
}

// openGeographicTeams returns the geographic teams for a floor minus closed teams,
// keeping geography order
func (a *Allocator) openGeographicTeams(state *PlacementState, floor Floor) []TeamID {
	teams := a.geography.GeographicTeams(floor)
	return slices.DeleteFunc(teams, func(t TeamID) bool { return !state.IsOpen(t) })
}

// validCandidates applies every constraint to the geographic teams.
// It also returns the name of the constraint that excluded each rejected team.
func (a *Allocator) validCandidates(state *PlacementState, patient Patient, geoTeams []TeamID) ([]TeamID, map[TeamID]string) {
	valid := make([]TeamID, 0, len(geoTeams))
	excluded := make(map[TeamID]string)
	for _, team := range geoTeams {
		ok := true
		for _, c := range a.constraints {
			if !c.IsTeamValid(state, patient, team, geoTeams) {
				excluded[team] = c.Name()
				ok = false
				break
			}
		}
		if ok {
			valid = append(valid, team)
		}
	}
	return valid, excluded
}

// score is lower for better candidates
func (a *Allocator) score(state *PlacementState, patient Patient, team TeamID, siblings []TeamID) float64 {
	census := state.Census[team]
	taken := state.NewAssignments[team]

	score := float64(census)*a.policy.CensusWeight + float64(taken)*a.policy.NewAssignmentWeight

	if a.policy.PilingOnThreshold > 0 && taken >= a.policy.PilingOnThreshold {
		for _, sibling := range siblings {
			if sibling != team && state.NewAssignments[sibling] == 0 {
				score += a.policy.PilingOnPenalty
				break
			}
		}
	}

	if a.policy.IsIMCU(team) && a.policy.IMCUSoftTarget > 0 && census >= a.policy.IMCUSoftTarget && !patient.Floor.NeedsIMCU() {
		score += a.policy.IMCUOverTargetPenalty
	}

	return score
}

// bestByScore picks the minimum score. Ties go to the lower census, then to the team
// listed first (geography order puts primary teams first).
func (a *Allocator) bestByScore(state *PlacementState, patient Patient, candidates, siblings []TeamID) (TeamID, float64) {
	best := candidates[0]
	bestScore := a.score(state, patient, best, siblings)
	for _, team := range candidates[1:] {
		s := a.score(state, patient, team, siblings)
		if s < bestScore || (s == bestScore && state.Census[team] < state.Census[best]) {
			best, bestScore = team, s
		}
	}
	return best, bestScore
}

// lowestCensus returns the team with the lowest running census, lowest ID on ties
func lowestCensus(state *PlacementState, teams []TeamID) (TeamID, bool) {
	if len(teams) == 0 {
		return NoTeam, false
	}
	best := teams[0]
	for _, t := range teams[1:] {
		if state.Census[t] < state.Census[best] || (state.Census[t] == state.Census[best] && t < best) {
			best = t
		}
	}
	return best, true
}

func (a *Allocator) place(state *PlacementState, patient Patient) (Assignment, bool) {
	geoTeams := a.openGeographicTeams(state, patient.Floor)

	if len(geoTeams) > 0 {
		valid, excluded := a.validCandidates(state, patient, geoTeams)
		if len(valid) > 0 {
			return a.placeGeographic(state, patient, geoTeams, valid, excluded), true
		}
	}

	return a.placeFallback(state, patient, geoTeams)
}

func (a *Allocator) placeGeographic(state *PlacementState, patient Patient, geoTeams, valid []TeamID, excluded map[TeamID]string) Assignment {
	// Only siblings that could still take this patient count towards piling on
	best, score := a.bestByScore(state, patient, valid, valid)
	bestCensus := state.Census[best]

	// IMCU-need patients stay with the IMCU teams whatever the balance
	if !patient.Floor.NeedsIMCU() {
		nonIMCURegular := slices.DeleteFunc(state.RegularOpenTeams(), func(t TeamID) bool { return a.policy.IsIMCU(t) })
		lowest, ok := lowestCensus(state, nonIMCURegular)
		if ok && !slices.Contains(valid, lowest) && bestCensus >= state.Census[lowest]+a.policy.MaxCensusGap {
			return Assignment{
				Patient:      patient,
				Team:         lowest,
				IsGeographic: false,
				Reason:       ReasonBalanceOverride,
				Detail: fmt.Sprintf("Balance override (%s → %s would be %d, %s only %d)",
					patient.Floor, best, bestCensus+1, lowest, state.Census[lowest]),
				Score: a.score(state, patient, lowest, nil),
			}
		}
	}

	reason := ReasonGeographic
	detail := fmt.Sprintf("Geographic (%s → %s, score=%.1f)", patient.Floor, best, score)
	for _, team := range geoTeams {
		if excluded[team] == equitySpreadName {
			reason = ReasonEquityOverride
			detail = fmt.Sprintf("Geographic, equity spread (%s → %s, %s already took %d new, score=%.1f)",
				patient.Floor, best, team, state.NewAssignments[team], score)
			break
		}
	}

	return Assignment{
		Patient:      patient,
		Team:         best,
		IsGeographic: true,
		Reason:       reason,
		Detail:       detail,
		Score:        score,
	}
}

// placeFallback walks the fallback tiers when no geographic team can take the patient:
// regular teams under soft cap, overflow teams under soft cap, regular teams over soft
// cap, then any open team still under its hard cap
func (a *Allocator) placeFallback(state *PlacementState, patient Patient, geoTeams []TeamID) (Assignment, bool) {
	var regular, regularUnderCap, overflowUnderCap, anyOpen []TeamID
	for _, t := range state.OpenTeams() {
		census := state.Census[t]
		if !a.policy.AtHardCap(t, census) {
			anyOpen = append(anyOpen, t)
		}
		if a.policy.IsIMCU(t) {
			continue
		}
		if a.policy.IsOverflow(t) {
			if census < a.policy.SoftCap {
				overflowUnderCap = append(overflowUnderCap, t)
			}
			continue
		}
		regular = append(regular, t)
		if census < a.policy.SoftCap && !slices.Contains(geoTeams, t) {
			regularUnderCap = append(regularUnderCap, t)
		}
	}

	tiers := []struct {
		teams []TeamID
		label string
	}{
		{regularUnderCap, "lowest census"},
		{overflowUnderCap, "overflow team"},
		{regular, "regular team over soft cap"},
		{anyOpen, "last open team"},
	}

	for _, tier := range tiers {
		team, ok := lowestCensus(state, tier.teams)
		if !ok {
			continue
		}

		reason := ReasonNoCapacityFallback
		var detail string
		switch {
		case len(a.geography.GeographicTeams(patient.Floor)) == 0:
			reason = ReasonOutlier
			if patient.Floor == FloorNone {
				detail = fmt.Sprintf("No floor specified, %s (%s)", tier.label, team)
			} else {
				detail = fmt.Sprintf("Floor %s not covered, %s (%s)", patient.Floor, tier.label, team)
			}
		case patient.Floor == FloorBoyer:
			detail = fmt.Sprintf("Boyer overflow (geographic teams full), %s (%s)", tier.label, team)
		default:
			detail = fmt.Sprintf("No geographic capacity for %s, %s (%s)", patient.Floor, tier.label, team)
		}

		return Assignment{
			Patient:      patient,
			Team:         team,
			IsGeographic: false,
			Reason:       reason,
			Detail:       detail,
			Score:        a.score(state, patient, team, geoTeams),
		}, true
	}

	return Assignment{}, false
}
