package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func checksOf(errs []ValidationError) []string {
	checks := make([]string, 0, len(errs))
	for _, e := range errs {
		checks = append(checks, e.Check)
	}
	return checks
}

func TestValidatePlacement_Healthy(t *testing.T) {
	patients := patientsAt("512", "ED")
	outcome := &PlacementOutcome{
		Assignments:    []Assignment{{Patient: patients[0], Team: 5}},
		Skipped:        []SkippedPatient{{Patient: patients[1], Warning: "no open team"}},
		ClosedTeams:    NewTeamSet(14),
		FinalCensus:    Census{5: 1},
		NewAssignments: map[TeamID]int{5: 1},
	}

	assert.Empty(t, ValidatePlacement(DefaultCapacityPolicy(), patients, outcome))
}

func TestValidatePlacement_DetectsBrokenInvariants(t *testing.T) {
	patients := patientsAt("512", "545", "IMCU")
	outcome := &PlacementOutcome{
		Assignments: []Assignment{
			{Patient: patients[0], Team: 5},
			{Patient: patients[0], Team: 16},
			{Patient: patients[2], Team: 1},
		},
		ClosedTeams:    NewTeamSet(5),
		FinalCensus:    Census{1: 11, 5: 2},
		NewAssignments: map[TeamID]int{1: 1, 5: 1},
	}

	errs := ValidatePlacement(DefaultCapacityPolicy(), patients, outcome)
	checks := checksOf(errs)

	assert.Contains(t, checks, "UniquePatient")
	assert.Contains(t, checks, "TeamUniverse")
	assert.Contains(t, checks, "ClosedTeam")
	assert.Contains(t, checks, "Completeness")
	assert.Contains(t, checks, "IMCUHardCap")
}

func TestValidatePlacement_StartingOverHardCapIsNotAnError(t *testing.T) {
	patients := patientsAt("ED")
	outcome := &PlacementOutcome{
		Assignments:    []Assignment{{Patient: patients[0], Team: 4}},
		FinalCensus:    Census{1: 12, 4: 1},
		NewAssignments: map[TeamID]int{4: 1},
	}

	assert.Empty(t, ValidatePlacement(DefaultCapacityPolicy(), patients, outcome))
}
