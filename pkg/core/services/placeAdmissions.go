package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

// DateLayout is the date format accepted on the command line and over HTTP
const DateLayout = "2006-01-02"

// PlaceAdmissionsRequest is one batch of new admissions to place
type PlaceAdmissionsRequest struct {
	Patients    []placement.Patient
	Census      placement.Census
	ClosedTeams placement.TeamSet

	// Date selects the scheduled closures that apply; zero means today
	Date time.Time

	// Quick ignores the census and every closure, placing onto an empty hospital
	Quick bool
}

// PlaceAdmissionsResult contains the placement results
type PlaceAdmissionsResult struct {
	RunID             string
	Date              string
	Quick             bool
	ScheduledClosures []config.ScheduledClosure
	Outcome           *placement.PlacementOutcome
	CensusSummary     []CensusRow
	GeographicCount   int

	// GeographicRate is the share of assignments that matched the patient's floor, 0..1
	GeographicRate float64
}

// PlaceAdmissions runs the placement allocator for a batch of new admissions.
// Closed teams are the explicit list plus any team closed by a rule on the run date.
func PlaceAdmissions(cfg *config.Config, logger *zap.Logger, req PlaceAdmissionsRequest) (*PlaceAdmissionsResult, error) {
	runID := uuid.New().String()
	date := runDate(req.Date)
	logger = logger.With(zap.String("run_id", runID))

	logger.Debug("Starting placeAdmissions",
		zap.String("date", date.Format(DateLayout)),
		zap.Int("patients", len(req.Patients)),
		zap.Bool("quick", req.Quick))

	allocator, err := placement.NewAllocator(placement.DefaultGeography(), cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("failed to create allocator: %w", err)
	}

	census := req.Census
	closed := req.ClosedTeams
	var scheduled []config.ScheduledClosure
	if req.Quick {
		census = placement.Census{}
		closed = placement.NewTeamSet()
	} else {
		scheduled, closed, err = effectiveClosures(cfg, logger, date, closed)
		if err != nil {
			return nil, err
		}
	}

	outcome, err := allocator.Allocate(req.Patients, census, closed)
	if err != nil {
		return nil, fmt.Errorf("placement failed: %w", err)
	}

	for _, a := range outcome.Assignments {
		logger.Debug("Assigned patient",
			zap.String("patient", a.Patient.ID),
			zap.String("location", a.Patient.RawLocation),
			zap.String("floor", string(a.Patient.Floor)),
			zap.Int("team", int(a.Team)),
			zap.String("reason", string(a.Reason)),
			zap.Float64("score", a.Score))
	}
	for _, note := range outcome.Notes {
		logger.Debug("Placement note", zap.String("note", note))
	}
	for _, s := range outcome.Skipped {
		logger.Warn("Patient not placed", zap.String("patient", s.Patient.ID), zap.String("warning", s.Warning))
	}
	for _, v := range outcome.ValidationErrors {
		logger.Error("Placement validation failed",
			zap.String("check", v.Check),
			zap.String("patient", v.PatientID),
			zap.Int("team", int(v.Team)),
			zap.String("description", v.Description))
	}

	geographic := outcome.GeographicCount()
	rate := 0.0
	if len(outcome.Assignments) > 0 {
		rate = float64(geographic) / float64(len(outcome.Assignments))
	}

	logger.Info("Placement complete",
		zap.Int("assigned", len(outcome.Assignments)),
		zap.Int("skipped", len(outcome.Skipped)),
		zap.Int("geographic", geographic),
		zap.Int("closed_teams", len(outcome.ClosedTeams)))

	return &PlaceAdmissionsResult{
		RunID:             runID,
		Date:              date.Format(DateLayout),
		Quick:             req.Quick,
		ScheduledClosures: scheduled,
		Outcome:           outcome,
		CensusSummary:     BuildCensusSummary(cfg.Policy(), outcome.StartingCensus, outcome.FinalCensus, outcome.ClosedTeams),
		GeographicCount:   geographic,
		GeographicRate:    rate,
	}, nil
}

func runDate(date time.Time) time.Time {
	if date.IsZero() {
		return time.Now()
	}
	return date
}

// effectiveClosures merges explicit closed teams with the scheduled closures for date
func effectiveClosures(cfg *config.Config, logger *zap.Logger, date time.Time, explicit placement.TeamSet) ([]config.ScheduledClosure, placement.TeamSet, error) {
	scheduled, err := cfg.ClosuresOn(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to evaluate team closures: %w", err)
	}

	for _, closure := range scheduled {
		logger.Info("Scheduled closure applies",
			zap.String("rrule", closure.RRule),
			zap.String("note", closure.Note),
			zap.Any("teams", closure.Teams))
	}

	return scheduled, config.ClosedTeams(scheduled).Union(explicit), nil
}
