package placement

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Redistributor audits an existing roster for patients on a geographically wrong team
// and proposes where each should move
type Redistributor struct {
	geography *Geography
	policy    CapacityPolicy
}

// NewRedistributor creates a Redistributor
func NewRedistributor(geography *Geography, policy CapacityPolicy) (*Redistributor, error) {
	if geography == nil {
		return nil, errors.New("geography is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid capacity policy: %w", err)
	}
	return &Redistributor{geography: geography, policy: policy}, nil
}

// MoveCandidate is a rostered patient whose current team does not cover their floor
type MoveCandidate struct {
	Patient ExistingPatient

	// AcceptableTeams are the open geographic teams for the patient's floor.
	// Empty means no geographic mapping: flagged for manual review.
	AcceptableTeams []TeamID
}

// Recommendation proposes a target team for one move candidate
type Recommendation struct {
	Patient         ExistingPatient
	AcceptableTeams []TeamID

	// Target is NoTeam when nothing could be recommended
	Target TeamID
	Reason Reason
	Detail string
	Score  float64
}

// HasTarget reports whether a team was recommended
func (r Recommendation) HasTarget() bool {
	return r.Target != NoTeam
}

// RedistributionOutcome is the result of auditing a roster
type RedistributionOutcome struct {
	NeedsMove       []MoveCandidate
	CorrectlyPlaced []ExistingPatient
	Recommendations []Recommendation

	// StartingCensus is counted from the roster; ProjectedCensus applies every recommendation
	StartingCensus  Census
	ProjectedCensus Census
	ClosedTeams     TeamSet
}

// Analyze splits the roster into patients that need to move and patients already on an
// acceptable team. A team is acceptable when it covers the patient's floor and is open.
func (r *Redistributor) Analyze(patients []ExistingPatient, closedTeams TeamSet) ([]MoveCandidate, []ExistingPatient) {
	needsMove := []MoveCandidate{}
	correctlyPlaced := []ExistingPatient{}

	for _, p := range patients {
		acceptable := slices.DeleteFunc(r.geography.GeographicTeams(p.Floor), func(t TeamID) bool {
			return closedTeams.Contains(t)
		})
		if slices.Contains(acceptable, p.CurrentTeam) {
			correctlyPlaced = append(correctlyPlaced, p)
			continue
		}
		needsMove = append(needsMove, MoveCandidate{Patient: p, AcceptableTeams: acceptable})
	}

	return needsMove, correctlyPlaced
}

// RosterCensus counts patients per current team, ignoring teams outside the universe
func RosterCensus(patients []ExistingPatient) Census {
	census := make(Census, int(MaxTeamID))
	for _, p := range patients {
		if p.CurrentTeam.Valid() {
			census[p.CurrentTeam]++
		}
	}
	return census
}

// Redistribute analyzes the roster and then recommends one target per patient that
// needs to move. Recommendations are made in a single sweep ordered by room, and each
// one updates the projected census seen by the next.
func (r *Redistributor) Redistribute(patients []ExistingPatient, closedTeams TeamSet) *RedistributionOutcome {
	closed := NewTeamSet()
	for t, ok := range closedTeams {
		if ok && t.Valid() {
			closed[t] = true
		}
	}

	needsMove, correctlyPlaced := r.Analyze(patients, closed)
	starting := RosterCensus(patients)
	projected := starting.Clone()

	ordered := slices.Clone(needsMove)
	slices.SortStableFunc(ordered, func(x, y MoveCandidate) int {
		if c := cmp.Compare(x.Patient.Room, y.Patient.Room); c != 0 {
			return c
		}
		return cmp.Compare(x.Patient.CurrentTeam, y.Patient.CurrentTeam)
	})

	var openOverflow []TeamID
	for _, t := range r.policy.OverflowTeams {
		if !closed.Contains(t) {
			openOverflow = append(openOverflow, t)
		}
	}

	recommendations := make([]Recommendation, 0, len(ordered))
	for _, candidate := range ordered {
		rec := r.recommend(candidate, projected, openOverflow)
		if rec.HasTarget() && rec.Target == candidate.Patient.CurrentTeam {
			rec.Reason = ReasonNoChange
			rec.Detail = fmt.Sprintf("Stays on %s (%s)", rec.Target, floorLabel(candidate.Patient.Floor))
			recommendations = append(recommendations, rec)
			continue
		}
		if rec.HasTarget() {
			if candidate.Patient.CurrentTeam.Valid() && projected[candidate.Patient.CurrentTeam] > 0 {
				projected[candidate.Patient.CurrentTeam]--
			}
			projected[rec.Target]++
		}
		recommendations = append(recommendations, rec)
	}

	return &RedistributionOutcome{
		NeedsMove:       needsMove,
		CorrectlyPlaced: correctlyPlaced,
		Recommendations: recommendations,
		StartingCensus:  starting,
		ProjectedCensus: projected,
		ClosedTeams:     closed,
	}
}

func (r *Redistributor) score(patient ExistingPatient, team TeamID, projected Census) float64 {
	census := projected[team]
	score := float64(census) * r.policy.CensusWeight
	if r.policy.IsIMCU(team) && r.policy.IMCUSoftTarget > 0 && census >= r.policy.IMCUSoftTarget && !patient.Floor.NeedsIMCU() {
		score += r.policy.IMCUOverTargetPenalty
	}
	return score
}

// pick returns the lowest scoring team, lower projected census then list order on ties
func (r *Redistributor) pick(patient ExistingPatient, teams []TeamID, projected Census) (TeamID, float64) {
	best := NoTeam
	var bestScore float64
	for _, t := range teams {
		s := r.score(patient, t, projected)
		if best == NoTeam || s < bestScore || (s == bestScore && projected[t] < projected[best]) {
			best, bestScore = t, s
		}
	}
	return best, bestScore
}

func (r *Redistributor) recommend(candidate MoveCandidate, projected Census, openOverflow []TeamID) Recommendation {
	patient := candidate.Patient
	rec := Recommendation{
		Patient:         patient,
		AcceptableTeams: candidate.AcceptableTeams,
		Target:          NoTeam,
	}

	// Score every team as if the patient had already left their current one
	view := projected.Clone()
	if patient.CurrentTeam.Valid() && view[patient.CurrentTeam] > 0 {
		view[patient.CurrentTeam]--
	}

	available := slices.DeleteFunc(slices.Clone(candidate.AcceptableTeams), func(t TeamID) bool {
		return r.policy.AtHardCap(t, view[t])
	})

	if len(available) > 0 {
		best, score := r.pick(patient, available, view)

		if view[best] >= r.policy.overflowThreshold() && len(openOverflow) > 0 {
			expanded := slices.Clone(available)
			for _, t := range openOverflow {
				if !slices.Contains(expanded, t) {
					expanded = append(expanded, t)
				}
			}
			best, score = r.pick(patient, expanded, view)
		}

		rec.Target = best
		rec.Score = score
		if slices.Contains(candidate.AcceptableTeams, best) {
			rec.Reason = ReasonGeographic
			rec.Detail = fmt.Sprintf("Geographic (%s → %s, projected %d)", patient.Floor, best, view[best])
		} else {
			rec.Reason = ReasonOverflow
			rec.Detail = fmt.Sprintf("Overflow (%s geographic teams at %d+, %s projected %d)",
				patient.Floor, r.policy.overflowThreshold(), best, view[best])
		}
		return rec
	}

	// Already on an open overflow team: that is where unplaceable patients belong
	if slices.Contains(openOverflow, patient.CurrentTeam) {
		rec.Target = patient.CurrentTeam
		rec.Score = r.score(patient, patient.CurrentTeam, view)
		return rec
	}

	if len(openOverflow) > 0 {
		best, score := r.pick(patient, openOverflow, view)
		rec.Target = best
		rec.Score = score
		rec.Reason = ReasonOverflow
		rec.Detail = fmt.Sprintf("No geographic match for %s (%s), overflow %s", patient.Room, floorLabel(patient.Floor), best)
		return rec
	}

	rec.Reason = ReasonManualReview
	rec.Detail = fmt.Sprintf("No match for %s (%s), manual review", patient.Room, floorLabel(patient.Floor))
	return rec
}

func floorLabel(f Floor) string {
	if f == FloorNone {
		return "no floor"
	}
	return string(f)
}
