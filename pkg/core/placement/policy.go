package placement

import (
	"errors"
	"fmt"
	"slices"
)

// CapacityPolicy holds the thresholds consulted by the allocator and the redistribution
// analyzer. Values are configuration, not computed.
type CapacityPolicy struct {
	// IMCUTeams have a lower hard cap and take IMCU-need patients first
	IMCUTeams []TeamID

	// OverflowTeams are used only once regular teams are saturated
	OverflowTeams []TeamID

	// IMCUHardCap is never exceeded by an IMCU team
	IMCUHardCap int

	// IMCUSoftTarget discourages filling IMCU slots at or above it with patients
	// that have no IMCU need. Zero disables the penalty.
	IMCUSoftTarget int

	// IMCUOverTargetPenalty is added to an IMCU team's score once it reaches IMCUSoftTarget
	IMCUOverTargetPenalty float64

	// SoftCap is a preference ceiling for non-IMCU teams
	SoftCap int

	// MaxNewBeforeSpread is the number of new patients a team may take in one pass
	// before a less loaded geographic sibling is preferred
	MaxNewBeforeSpread int

	// MaxCensusGap is how far above the least loaded team a geographic team may sit
	// before balance wins over geography
	MaxCensusGap int

	// CensusWeight and NewAssignmentWeight scale the two score terms
	CensusWeight        float64
	NewAssignmentWeight float64

	// PilingOnThreshold and PilingOnPenalty discourage stacking new patients on one
	// team while a geographic sibling has none
	PilingOnThreshold int
	PilingOnPenalty   float64

	// OverflowThreshold is the projected census at which redistribution also
	// considers overflow teams. Zero means SoftCap.
	OverflowThreshold int
}

// DefaultCapacityPolicy returns the thresholds in use on the medicine service
func DefaultCapacityPolicy() CapacityPolicy {
	return CapacityPolicy{
		IMCUTeams:             []TeamID{1, 2, 3},
		OverflowTeams:         []TeamID{14, 15},
		IMCUHardCap:           10,
		IMCUSoftTarget:        9,
		IMCUOverTargetPenalty: 3,
		SoftCap:               14,
		MaxNewBeforeSpread:    3,
		MaxCensusGap:          4,
		CensusWeight:          1,
		NewAssignmentWeight:   1,
		PilingOnThreshold:     2,
		PilingOnPenalty:       2,
	}
}

// Validate checks the policy for values that would make allocation meaningless
func (p CapacityPolicy) Validate() error {
	var errs []error
	for _, t := range slices.Concat(p.IMCUTeams, p.OverflowTeams) {
		if !t.Valid() {
			errs = append(errs, fmt.Errorf("team %d is outside %d-%d", t, MinTeamID, MaxTeamID))
		}
	}
	for _, t := range p.IMCUTeams {
		if slices.Contains(p.OverflowTeams, t) {
			errs = append(errs, fmt.Errorf("%s cannot be both IMCU and overflow", t))
		}
	}
	if p.IMCUHardCap < 1 {
		errs = append(errs, fmt.Errorf("IMCU hard cap must be positive, got %d", p.IMCUHardCap))
	}
	if p.IMCUSoftTarget < 0 || p.IMCUSoftTarget > p.IMCUHardCap {
		errs = append(errs, fmt.Errorf("IMCU soft target %d must be between 0 and the hard cap %d", p.IMCUSoftTarget, p.IMCUHardCap))
	}
	if p.SoftCap < 1 {
		errs = append(errs, fmt.Errorf("soft cap must be positive, got %d", p.SoftCap))
	}
	if p.MaxNewBeforeSpread < 1 {
		errs = append(errs, fmt.Errorf("max new before spread must be positive, got %d", p.MaxNewBeforeSpread))
	}
	if p.MaxCensusGap < 0 {
		errs = append(errs, fmt.Errorf("max census gap cannot be negative, got %d", p.MaxCensusGap))
	}
	if p.CensusWeight < 0 || p.NewAssignmentWeight < 0 || p.PilingOnPenalty < 0 || p.IMCUOverTargetPenalty < 0 {
		errs = append(errs, errors.New("score weights and penalties cannot be negative"))
	}
	if p.OverflowThreshold < 0 {
		errs = append(errs, fmt.Errorf("overflow threshold cannot be negative, got %d", p.OverflowThreshold))
	}
	return errors.Join(errs...)
}

// IsIMCU reports whether the team is an IMCU team
func (p CapacityPolicy) IsIMCU(team TeamID) bool {
	return slices.Contains(p.IMCUTeams, team)
}

// IsOverflow reports whether the team is an overflow team
func (p CapacityPolicy) IsOverflow(team TeamID) bool {
	return slices.Contains(p.OverflowTeams, team)
}

// AtHardCap reports whether an IMCU team can take no more patients
func (p CapacityPolicy) AtHardCap(team TeamID, census int) bool {
	return p.IsIMCU(team) && census >= p.IMCUHardCap
}

// UnderOwnCap reports whether a team is below its own ceiling
// (hard cap for IMCU teams, soft cap for everyone else)
func (p CapacityPolicy) UnderOwnCap(team TeamID, census int) bool {
	if p.IsIMCU(team) {
		return census < p.IMCUHardCap
	}
	return census < p.SoftCap
}

// overflowThreshold resolves the redistribution overflow trigger
func (p CapacityPolicy) overflowThreshold() int {
	if p.OverflowThreshold > 0 {
		return p.OverflowThreshold
	}
	return p.SoftCap
}
