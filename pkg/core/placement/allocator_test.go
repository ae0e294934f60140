package placement

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	a, err := NewAllocator(DefaultGeography(), DefaultCapacityPolicy())
	require.NoError(t, err)
	return a
}

// uniformCensus gives every team the same count
func uniformCensus(count int) Census {
	census := Census{}
	for _, team := range AllTeams() {
		census[team] = count
	}
	return census
}

func patientsAt(locations ...string) []Patient {
	patients := make([]Patient, 0, len(locations))
	for i, loc := range locations {
		patients = append(patients, NewPatient(fmt.Sprintf("Pt%02d", i+1), loc))
	}
	return patients
}

func assignmentFor(t *testing.T, outcome *PlacementOutcome, patientID string) Assignment {
	t.Helper()
	for _, a := range outcome.Assignments {
		if a.Patient.ID == patientID {
			return a
		}
	}
	require.Failf(t, "assignment not found", "no assignment for %s", patientID)
	return Assignment{}
}

func TestNewAllocator_RejectsInvalidPolicy(t *testing.T) {
	policy := DefaultCapacityPolicy()
	policy.SoftCap = 0

	_, err := NewAllocator(DefaultGeography(), policy)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid capacity policy")

	_, err = NewAllocator(nil, DefaultCapacityPolicy())
	assert.Error(t, err)
}

func TestAllocate_EmptyHospital(t *testing.T) {
	a := newTestAllocator(t)
	patients := patientsAt("312A", "545B", "877", "ED-intake")

	outcome, err := a.Allocate(patients, Census{}, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 4)
	assert.Empty(t, outcome.Skipped)
	assert.Empty(t, outcome.ValidationErrors)

	// IMCU-need first, then the outlier, then geographic floors in label order
	order := []string{}
	for _, asg := range outcome.Assignments {
		order = append(order, asg.Patient.RawLocation)
	}
	assert.Equal(t, []string{"312A", "ED-intake", "545B", "877"}, order)

	imcu := assignmentFor(t, outcome, "Pt01")
	assert.Contains(t, []TeamID{1, 2, 3}, imcu.Team)
	assert.True(t, imcu.IsGeographic)
	assert.Equal(t, ReasonGeographic, imcu.Reason)

	east := assignmentFor(t, outcome, "Pt02")
	assert.Equal(t, TeamID(5), east.Team)
	assert.True(t, east.IsGeographic)

	boyer := assignmentFor(t, outcome, "Pt03")
	assert.Equal(t, TeamID(12), boyer.Team, "Boyer primary team wins the tie")
	assert.True(t, boyer.IsGeographic)

	ed := assignmentFor(t, outcome, "Pt04")
	assert.Equal(t, TeamID(4), ed.Team, "lowest census regular team")
	assert.False(t, ed.IsGeographic)
	assert.Equal(t, ReasonOutlier, ed.Reason)
}

func TestAllocate_BoyerFallsBackWhenPrimaryIsBusier(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(8)
	census[12] = 9

	outcome, err := a.Allocate(patientsAt("877"), census, nil)
	require.NoError(t, err)

	assert.Equal(t, TeamID(6), outcome.Assignments[0].Team)
	assert.True(t, outcome.Assignments[0].IsGeographic)
}

func TestAllocate_IMCUSaturation(t *testing.T) {
	a := newTestAllocator(t)
	census := Census{1: 10, 2: 10, 3: 10}

	outcome, err := a.Allocate(patientsAt("IMCU"), census, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 1)

	asg := outcome.Assignments[0]
	assert.NotContains(t, []TeamID{1, 2, 3}, asg.Team)
	assert.False(t, asg.IsGeographic)
	assert.Equal(t, ReasonNoCapacityFallback, asg.Reason)
	assert.Contains(t, asg.Detail, "No geographic capacity for IMCU")
	assert.Empty(t, outcome.ValidationErrors)
}

func TestAllocate_ClosedTeamExcluded(t *testing.T) {
	a := newTestAllocator(t)

	outcome, err := a.Allocate(patientsAt("545B"), Census{}, NewTeamSet(5))
	require.NoError(t, err)
	assert.Equal(t, TeamID(10), outcome.Assignments[0].Team)

	// However loaded team 10 is, team 5 stays closed
	census := uniformCensus(3)
	census[5] = 0
	census[10] = 13
	outcome, err = a.Allocate(patientsAt("545B", "546", "547A"), census, NewTeamSet(5))
	require.NoError(t, err)
	for _, asg := range outcome.Assignments {
		assert.NotEqual(t, TeamID(5), asg.Team)
	}
	assert.Equal(t, 0, outcome.FinalCensus[5])
}

func TestAllocate_InvalidClosedTeamIDsIgnored(t *testing.T) {
	a := newTestAllocator(t)

	outcome, err := a.Allocate(patientsAt("545B"), Census{}, TeamSet{0: true, 99: true, -3: true})
	require.NoError(t, err)

	assert.Equal(t, TeamID(5), outcome.Assignments[0].Team)
	assert.Empty(t, outcome.ClosedTeams)
}

func TestAllocate_SoftCapPrefersSiblingUnderCap(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(12)
	census[5] = 14
	census[10] = 13

	outcome, err := a.Allocate(patientsAt("512"), census, nil)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(10), asg.Team)
	assert.Equal(t, ReasonGeographic, asg.Reason)
}

func TestAllocate_SoftCapExceededWhenNoSiblingUnderCap(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(14)
	census[5] = 15

	outcome, err := a.Allocate(patientsAt("512"), census, nil)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(10), asg.Team)
	assert.True(t, asg.IsGeographic)
}

func TestAllocate_EquitySpread(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(6)
	census[5] = 0

	outcome, err := a.Allocate(patientsAt("501", "502", "503", "504"), census, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 4)

	assert.Equal(t, TeamID(5), assignmentFor(t, outcome, "Pt01").Team)
	assert.Equal(t, TeamID(5), assignmentFor(t, outcome, "Pt02").Team)

	third := assignmentFor(t, outcome, "Pt03")
	assert.Equal(t, TeamID(5), third.Team)
	assert.Equal(t, 6.0, third.Score, "census 2 + 2 new + piling-on penalty 2")

	fourth := assignmentFor(t, outcome, "Pt04")
	assert.Equal(t, TeamID(10), fourth.Team, "team 5 already took three new patients")
	assert.Equal(t, ReasonEquityOverride, fourth.Reason)
	assert.True(t, fourth.IsGeographic)
}

func TestAllocate_NoPilingOnPenaltyFromCappedSiblings(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(6)
	census[1] = 10
	census[2] = 0
	census[3] = 10

	outcome, err := a.Allocate(patientsAt("330", "331", "332"), census, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 3)

	for _, asg := range outcome.Assignments {
		assert.Equal(t, TeamID(2), asg.Team)
	}
	third := assignmentFor(t, outcome, "Pt03")
	assert.Equal(t, 4.0, third.Score, "census 2 + 2 new, teams 1 and 3 are at the IMCU hard cap")
}

func TestAllocate_BalanceOverride(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(10)
	census[4] = 2

	outcome, err := a.Allocate(patientsAt("512"), census, nil)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(4), asg.Team)
	assert.False(t, asg.IsGeographic)
	assert.Equal(t, ReasonBalanceOverride, asg.Reason)
	assert.Contains(t, asg.Detail, "Med 4 only 2")
}

func TestAllocate_BalanceOverrideSparesIMCUNeed(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(0)
	census[1], census[2], census[3] = 8, 8, 8

	outcome, err := a.Allocate(patientsAt("312"), census, nil)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(1), asg.Team)
	assert.Equal(t, ReasonGeographic, asg.Reason)
}

func TestAllocate_IMCUSoftTargetPenalty(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(9)

	outcome, err := a.Allocate(patientsAt("IMCU", "345"), census, nil)
	require.NoError(t, err)

	need := assignmentFor(t, outcome, "Pt01")
	assert.Equal(t, TeamID(1), need.Team)
	assert.Equal(t, 9.0, need.Score, "IMCU-need patients are not penalised")

	east := assignmentFor(t, outcome, "Pt02")
	assert.Equal(t, TeamID(2), east.Team)
	assert.Equal(t, 12.0, east.Score, "census 9 + over-target penalty 3")
}

func TestAllocate_IMCUHardCapNeverExceeded(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(0)
	census[1], census[2], census[3] = 8, 8, 8

	locations := make([]string, 10)
	for i := range locations {
		locations[i] = "IMCU"
	}

	outcome, err := a.Allocate(patientsAt(locations...), census, nil)
	require.NoError(t, err)
	require.Len(t, outcome.Assignments, 10)

	for _, team := range []TeamID{1, 2, 3} {
		assert.LessOrEqual(t, outcome.FinalCensus[team], 10)
	}
	assert.Equal(t, 6, outcome.GeographicCount())
	assert.Empty(t, outcome.ValidationErrors)
}

func TestAllocate_OverflowOnlyWhenRegularTeamsSaturated(t *testing.T) {
	a := newTestAllocator(t)
	census := uniformCensus(14)
	census[1], census[2], census[3] = 10, 10, 10
	census[14], census[15] = 3, 1

	outcome, err := a.Allocate(patientsAt("ED"), census, nil)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(15), asg.Team)
	assert.Equal(t, ReasonOutlier, asg.Reason)
	assert.Contains(t, asg.Detail, "overflow team")

	outcome, err = a.Allocate(patientsAt("ED"), uniformCensus(0), nil)
	require.NoError(t, err)
	assert.NotContains(t, []TeamID{14, 15}, outcome.Assignments[0].Team)
}

func TestAllocate_LastResortAnyOpenTeam(t *testing.T) {
	a := newTestAllocator(t)
	closed := NewTeamSet(4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)

	outcome, err := a.Allocate(patientsAt("ED"), Census{1: 9, 2: 4, 3: 10}, closed)
	require.NoError(t, err)

	asg := outcome.Assignments[0]
	assert.Equal(t, TeamID(2), asg.Team)
	assert.Contains(t, asg.Detail, "last open team")
}

func TestAllocate_NoOpenTeamsSkipsPatients(t *testing.T) {
	a := newTestAllocator(t)
	patients := patientsAt("312A", "ED", "545B")

	outcome, err := a.Allocate(patients, Census{}, NewTeamSet(AllTeams()...))
	require.NoError(t, err)

	assert.Empty(t, outcome.Assignments)
	require.Len(t, outcome.Skipped, 3)
	assert.Contains(t, outcome.Skipped[0].Warning, "no open team available")
	assert.Empty(t, outcome.ValidationErrors, "assigned + skipped still covers every patient")
}

func TestAllocate_SkipsWhenOnlyCappedIMCUTeamsOpen(t *testing.T) {
	a := newTestAllocator(t)
	closed := NewTeamSet(4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15)

	outcome, err := a.Allocate(patientsAt("IMCU", "ED"), Census{1: 10, 2: 10, 3: 10}, closed)
	require.NoError(t, err)

	assert.Empty(t, outcome.Assignments)
	assert.Len(t, outcome.Skipped, 2)
}

func TestAllocate_NotesForPatientsWithoutFloor(t *testing.T) {
	a := newTestAllocator(t)

	outcome, err := a.Allocate(patientsAt("ED", "2W", "512"), Census{}, nil)
	require.NoError(t, err)

	require.Len(t, outcome.Notes, 2)
	assert.Contains(t, outcome.Notes[0], "floor 2W has no covering team")
	assert.Contains(t, outcome.Notes[1], "no floor recognised")
	assert.Equal(t, ReasonOutlier, assignmentFor(t, outcome, "Pt02").Reason)
}

func TestAllocate_DoesNotMutateStartingCensus(t *testing.T) {
	a := newTestAllocator(t)
	census := Census{5: 3}

	outcome, err := a.Allocate(patientsAt("512", "513"), census, nil)
	require.NoError(t, err)

	assert.Equal(t, Census{5: 3}, census)
	assert.Equal(t, 3, outcome.StartingCensus[5])
	assert.Equal(t, 5, outcome.FinalCensus[5]+outcome.FinalCensus[10])
}

func TestAllocate_IgnoresCensusOutsideUniverse(t *testing.T) {
	a := newTestAllocator(t)

	outcome, err := a.Allocate(patientsAt("512"), Census{0: 4, 16: 2}, nil)
	require.NoError(t, err)

	assert.NotContains(t, outcome.FinalCensus, TeamID(16))
}

func TestAllocate_NegativeCensusIsContractViolation(t *testing.T) {
	a := newTestAllocator(t)

	_, err := a.Allocate(patientsAt("512"), Census{5: -1}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "negative")
}

func TestAllocate_DuplicatePatientIDIsContractViolation(t *testing.T) {
	a := newTestAllocator(t)
	patients := []Patient{NewPatient("Pt1", "512"), NewPatient("Pt1", "545")}

	_, err := a.Allocate(patients, Census{}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate patient identifier")
}

func TestAllocate_Deterministic(t *testing.T) {
	a := newTestAllocator(t)
	census := Census{1: 7, 2: 9, 3: 8, 4: 11, 5: 6, 6: 12, 7: 3, 8: 9, 9: 10, 10: 4, 11: 13, 12: 8, 13: 5}
	patients := patientsAt("312A", "ED", "545B", "877", "725", "IMCU", "Overnight", "612", "448", "801", "ED hall", "3 East")

	first, err := a.Allocate(patients, census, NewTeamSet(14))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := a.Allocate(patients, census, NewTeamSet(14))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Len(t, first.Assignments, len(patients))
	assert.Empty(t, first.ValidationErrors)
}

func TestSortPatients_PriorityBands(t *testing.T) {
	a := newTestAllocator(t)
	patients := []Patient{
		NewPatient("c", "545"),
		NewPatient("b", "ED"),
		NewPatient("a", "345"),
		NewPatient("e", "312"),
		NewPatient("d", "2W"),
		NewPatient("f", "IMCU"),
		NewPatient("g", "725"),
	}

	sorted := a.SortPatients(patients)

	ids := make([]string, 0, len(sorted))
	for _, p := range sorted {
		ids = append(ids, p.ID)
	}
	// 3W, IMCU | 2W, no floor | 3E, 5E, 7?
	assert.Equal(t, []string{"e", "f", "d", "b", "a", "c", "g"}, ids)
}
