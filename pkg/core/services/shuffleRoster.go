package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

// ShuffleRosterRequest is an existing roster to audit
type ShuffleRosterRequest struct {
	Roster      []placement.ExistingPatient
	ClosedTeams placement.TeamSet

	// Date selects the scheduled closures that apply; zero means today
	Date time.Time
}

// ShuffleRosterResult contains the redistribution recommendations
type ShuffleRosterResult struct {
	RunID             string
	Date              string
	ScheduledClosures []config.ScheduledClosure
	Outcome           *placement.RedistributionOutcome
	CensusSummary     []CensusRow

	// MoveCount counts recommendations that actually change team
	MoveCount int
}

// ShuffleRoster finds rostered patients on a team that does not cover their floor and
// recommends where each should go
func ShuffleRoster(cfg *config.Config, logger *zap.Logger, req ShuffleRosterRequest) (*ShuffleRosterResult, error) {
	runID := uuid.New().String()
	date := runDate(req.Date)
	logger = logger.With(zap.String("run_id", runID))

	logger.Debug("Starting shuffleRoster",
		zap.String("date", date.Format(DateLayout)),
		zap.Int("roster", len(req.Roster)))

	redistributor, err := placement.NewRedistributor(placement.DefaultGeography(), cfg.Policy())
	if err != nil {
		return nil, fmt.Errorf("failed to create redistributor: %w", err)
	}

	scheduled, closed, err := effectiveClosures(cfg, logger, date, req.ClosedTeams)
	if err != nil {
		return nil, err
	}

	outcome := redistributor.Redistribute(req.Roster, closed)

	moves := 0
	for _, rec := range outcome.Recommendations {
		if rec.HasTarget() && rec.Reason != placement.ReasonNoChange {
			moves++
		}
		if !rec.HasTarget() {
			logger.Warn("Manual review needed",
				zap.String("room", rec.Patient.Room),
				zap.Int("current_team", int(rec.Patient.CurrentTeam)))
			continue
		}
		logger.Debug("Recommendation",
			zap.String("room", rec.Patient.Room),
			zap.String("floor", string(rec.Patient.Floor)),
			zap.Int("from", int(rec.Patient.CurrentTeam)),
			zap.Int("to", int(rec.Target)),
			zap.String("reason", string(rec.Reason)))
	}

	logger.Info("Redistribution complete",
		zap.Int("roster", len(req.Roster)),
		zap.Int("needs_move", len(outcome.NeedsMove)),
		zap.Int("moves", moves))

	return &ShuffleRosterResult{
		RunID:             runID,
		Date:              date.Format(DateLayout),
		ScheduledClosures: scheduled,
		Outcome:           outcome,
		CensusSummary:     BuildCensusSummary(cfg.Policy(), outcome.StartingCensus, outcome.ProjectedCensus, outcome.ClosedTeams),
		MoveCount:         moves,
	}, nil
}
