package placement

import (
	"fmt"
	"slices"
)

// TeamID identifies a medicine team ("Med N")
type TeamID int

// NoTeam marks a missing recommendation
const NoTeam TeamID = 0

// Team universe bounds
const (
	MinTeamID TeamID = 1
	MaxTeamID TeamID = 15
)

// AllTeams returns every team ID in ascending order
func AllTeams() []TeamID {
	teams := make([]TeamID, 0, int(MaxTeamID))
	for t := MinTeamID; t <= MaxTeamID; t++ {
		teams = append(teams, t)
	}
	return teams
}

// Valid reports whether the team is inside the fixed team universe
func (t TeamID) Valid() bool {
	return t >= MinTeamID && t <= MaxTeamID
}

func (t TeamID) String() string {
	return fmt.Sprintf("Med %d", int(t))
}

// Floor is a canonical floor label such as "5E", "IMCU", "BOYER" or an ambiguous "5?"
// The empty Floor means no geographic preference.
type Floor string

// Canonical special floors
const (
	FloorNone  Floor = ""
	FloorIMCU  Floor = "IMCU"
	FloorBoyer Floor = "BOYER"
	Floor3West Floor = "3W"
)

// IsAmbiguous returns true for labels like "5?" where the side of the floor is unknown
func (f Floor) IsAmbiguous() bool {
	return len(f) > 1 && f[len(f)-1] == '?'
}

// NeedsIMCU returns true when the floor implies a hard clinical need for the IMCU teams
func (f Floor) NeedsIMCU() bool {
	return f == FloorIMCU || f == Floor3West
}

// Patient is a new admission waiting for a team
type Patient struct {
	// ID is unique within a batch (e.g. "Pt1")
	ID string

	// RawLocation is the location exactly as entered
	RawLocation string

	// Floor is the normalized floor, FloorNone for ED or unrecognized locations
	Floor Floor

	// Clinician is the admitting clinician tag, display only
	Clinician string
}

// NewPatient builds a Patient, normalizing the raw location
func NewPatient(id, rawLocation string) Patient {
	return Patient{
		ID:          id,
		RawLocation: rawLocation,
		Floor:       NormalizeFloor(rawLocation),
	}
}

// ExistingPatient is a patient already carried by a team
type ExistingPatient struct {
	Room        string
	CurrentTeam TeamID
	Floor       Floor
}

// NewExistingPatient builds an ExistingPatient, normalizing the room
func NewExistingPatient(room string, currentTeam TeamID) ExistingPatient {
	return ExistingPatient{
		Room:        room,
		CurrentTeam: currentTeam,
		Floor:       NormalizeFloor(room),
	}
}

// Census maps a team to its current patient count. Missing entries count as zero.
type Census map[TeamID]int

// Get returns the count for a team, zero when absent
func (c Census) Get(team TeamID) int {
	return c[team]
}

// Clone returns an independent copy restricted to the team universe
func (c Census) Clone() Census {
	out := make(Census, int(MaxTeamID))
	for team, count := range c {
		if team.Valid() {
			out[team] = count
		}
	}
	return out
}

// Validate rejects negative counts, which indicate a caller bug
func (c Census) Validate() error {
	for _, team := range AllTeams() {
		if c[team] < 0 {
			return fmt.Errorf("census for %s is negative (%d)", team, c[team])
		}
	}
	return nil
}

// TeamSet is a set of team IDs
type TeamSet map[TeamID]bool

// NewTeamSet builds a set from the given teams, silently dropping IDs outside 1..15
func NewTeamSet(teams ...TeamID) TeamSet {
	set := make(TeamSet, len(teams))
	for _, t := range teams {
		if t.Valid() {
			set[t] = true
		}
	}
	return set
}

// Contains reports membership
func (s TeamSet) Contains(team TeamID) bool {
	return s[team]
}

// Sorted returns the members in ascending order
func (s TeamSet) Sorted() []TeamID {
	out := make([]TeamID, 0, len(s))
	for t, ok := range s {
		if ok {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

// Union returns a new set containing members of both sets
func (s TeamSet) Union(other TeamSet) TeamSet {
	out := make(TeamSet, len(s)+len(other))
	for t, ok := range s {
		if ok {
			out[t] = true
		}
	}
	for t, ok := range other {
		if ok {
			out[t] = true
		}
	}
	return out
}

// Reason tags the rule that decided an assignment
type Reason string

const (
	// ReasonGeographic means the patient went to a team covering their floor
	ReasonGeographic Reason = "GEOGRAPHIC"

	// ReasonEquityOverride means a geographic team was chosen after the equity limit
	// excluded a sibling that had already taken too many new patients
	ReasonEquityOverride Reason = "EQUITY_OVERRIDE"

	// ReasonBalanceOverride means geography was skipped because the geographic team
	// would sit too far above the least loaded team
	ReasonBalanceOverride Reason = "BALANCE_OVERRIDE"

	// ReasonOutlier means the patient had no floor (ED or unrecognized) and went to
	// the least loaded team
	ReasonOutlier Reason = "OUTLIER_BALANCE"

	// ReasonNoCapacityFallback means every geographic team was unavailable
	ReasonNoCapacityFallback Reason = "NO_CAPACITY_FALLBACK"

	// ReasonNoChange means a rostered patient already sits on an acceptable team
	ReasonNoChange Reason = "NO_CHANGE"

	// ReasonOverflow means a rostered patient was sent to an overflow team
	ReasonOverflow Reason = "OVERFLOW"

	// ReasonManualReview means no team could be recommended
	ReasonManualReview Reason = "MANUAL_REVIEW"
)

// Assignment is one placement decision
type Assignment struct {
	Patient      Patient
	Team         TeamID
	IsGeographic bool
	Reason       Reason

	// Detail is a human readable explanation, not meant for computation
	Detail string

	// Score is the allocator score of the chosen team (lower is better)
	Score float64
}

// SkippedPatient is a patient the allocator could not place
type SkippedPatient struct {
	Patient Patient
	Warning string
}
