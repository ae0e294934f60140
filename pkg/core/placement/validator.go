package placement

import "fmt"

// ValidationError describes a broken invariant in a finished placement
type ValidationError struct {
	Team        TeamID
	PatientID   string
	Check       string
	Description string
}

// ValidatePlacement checks a finished outcome against the placement invariants.
// Returns an empty slice when the outcome is valid.
func ValidatePlacement(policy CapacityPolicy, patients []Patient, outcome *PlacementOutcome) []ValidationError {
	errors := []ValidationError{}

	seen := make(map[string]bool, len(patients))
	for _, a := range outcome.Assignments {
		if seen[a.Patient.ID] {
			errors = append(errors, ValidationError{
				Team:        a.Team,
				PatientID:   a.Patient.ID,
				Check:       "UniquePatient",
				Description: fmt.Sprintf("patient %s assigned more than once", a.Patient.ID),
			})
		}
		seen[a.Patient.ID] = true

		if !a.Team.Valid() {
			errors = append(errors, ValidationError{
				Team:        a.Team,
				PatientID:   a.Patient.ID,
				Check:       "TeamUniverse",
				Description: fmt.Sprintf("patient %s assigned to unknown team %d", a.Patient.ID, a.Team),
			})
		}

		if outcome.ClosedTeams.Contains(a.Team) {
			errors = append(errors, ValidationError{
				Team:        a.Team,
				PatientID:   a.Patient.ID,
				Check:       "ClosedTeam",
				Description: fmt.Sprintf("patient %s assigned to closed team %s", a.Patient.ID, a.Team),
			})
		}
	}

	for _, s := range outcome.Skipped {
		seen[s.Patient.ID] = true
	}
	for _, p := range patients {
		if !seen[p.ID] {
			errors = append(errors, ValidationError{
				PatientID:   p.ID,
				Check:       "Completeness",
				Description: fmt.Sprintf("patient %s was neither assigned nor skipped", p.ID),
			})
		}
	}
	if len(outcome.Assignments)+len(outcome.Skipped) != len(patients) {
		errors = append(errors, ValidationError{
			Check: "Completeness",
			Description: fmt.Sprintf("%d assigned + %d skipped does not match %d patients",
				len(outcome.Assignments), len(outcome.Skipped), len(patients)),
		})
	}

	// Only new patients can break the hard cap; a team that started over it is not our doing
	for _, team := range policy.IMCUTeams {
		if outcome.NewAssignments[team] > 0 && outcome.FinalCensus[team] > policy.IMCUHardCap {
			errors = append(errors, ValidationError{
				Team:        team,
				Check:       "IMCUHardCap",
				Description: fmt.Sprintf("%s census %d exceeds hard cap %d", team, outcome.FinalCensus[team], policy.IMCUHardCap),
			})
		}
	}

	return errors
}
