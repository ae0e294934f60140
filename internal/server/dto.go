package server

import (
	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/services"
)

type patientRequest struct {
	ID        string `json:"id"`
	Location  string `json:"location" validate:"required"`
	Clinician string `json:"clinician"`
}

type placementRequest struct {
	// Census is keyed by team number; teams outside 1-15 are rejected
	Census      map[int]int      `json:"census" validate:"dive,keys,min=1,max=15,endkeys,min=0"`
	ClosedTeams []int            `json:"closedTeams"`
	Patients    []patientRequest `json:"patients" validate:"required,min=1,dive"`
	Date        string           `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Quick       bool             `json:"quick"`
}

// rosterEntryRequest is one roster line; entries whose team is outside 1-15 are skipped with a warning
type rosterEntryRequest struct {
	Room string `json:"room" validate:"required"`
	Team int    `json:"team"`
}

type redistributionRequest struct {
	Roster      []rosterEntryRequest `json:"roster" validate:"required,min=1,dive"`
	ClosedTeams []int                `json:"closedTeams"`
	Date        string               `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type assignmentResponse struct {
	PatientID  string  `json:"patientId"`
	Location   string  `json:"location"`
	Floor      string  `json:"floor"`
	Clinician  string  `json:"clinician,omitempty"`
	Team       int     `json:"team"`
	Geographic bool    `json:"geographic"`
	Reason     string  `json:"reason"`
	Detail     string  `json:"detail"`
	Score      float64 `json:"score"`
}

type skippedResponse struct {
	PatientID string `json:"patientId"`
	Location  string `json:"location"`
	Warning   string `json:"warning"`
}

type validationErrorResponse struct {
	Check       string `json:"check"`
	Team        int    `json:"team,omitempty"`
	PatientID   string `json:"patientId,omitempty"`
	Description string `json:"description"`
}

type closureResponse struct {
	Teams []int  `json:"teams"`
	Note  string `json:"note,omitempty"`
}

type censusRowResponse struct {
	Team   int      `json:"team"`
	Floors []string `json:"floors"`
	Start  int      `json:"start"`
	Delta  int      `json:"delta"`
	Final  int      `json:"final"`
	Closed bool     `json:"closed"`
	IMCU   bool     `json:"imcu"`
	Status string   `json:"status,omitempty"`
}

type placementResponse struct {
	RunID             string                    `json:"runId"`
	Date              string                    `json:"date"`
	Quick             bool                      `json:"quick"`
	Assignments       []assignmentResponse      `json:"assignments"`
	Skipped           []skippedResponse         `json:"skipped"`
	Notes             []string                  `json:"notes"`
	ClosedTeams       []int                     `json:"closedTeams"`
	ScheduledClosures []closureResponse         `json:"scheduledClosures"`
	Census            []censusRowResponse       `json:"census"`
	GeographicCount   int                       `json:"geographicCount"`
	GeographicRate    float64                   `json:"geographicRate"`
	ValidationErrors  []validationErrorResponse `json:"validationErrors"`
}

type recommendationResponse struct {
	Room            string  `json:"room"`
	Floor           string  `json:"floor"`
	CurrentTeam     int     `json:"currentTeam"`
	AcceptableTeams []int   `json:"acceptableTeams"`
	Target          int     `json:"target,omitempty"`
	Reason          string  `json:"reason"`
	Detail          string  `json:"detail"`
	Score           float64 `json:"score"`
}

type rosterWarningResponse struct {
	Index   int    `json:"index"`
	Room    string `json:"room"`
	Team    int    `json:"team"`
	Message string `json:"message"`
}

type redistributionResponse struct {
	RunID             string                   `json:"runId"`
	Date              string                   `json:"date"`
	CorrectlyPlaced   int                      `json:"correctlyPlaced"`
	NeedsMove         int                      `json:"needsMove"`
	MoveCount         int                      `json:"moveCount"`
	Recommendations   []recommendationResponse `json:"recommendations"`
	ClosedTeams       []int                    `json:"closedTeams"`
	ScheduledClosures []closureResponse        `json:"scheduledClosures"`
	Census            []censusRowResponse      `json:"census"`
	Warnings          []rosterWarningResponse  `json:"warnings"`
}

type floorResponse struct {
	Location        string `json:"location"`
	Floor           string `json:"floor"`
	IMCUOverride    bool   `json:"imcuOverride"`
	GeographicTeams []int  `json:"geographicTeams"`
}

type teamResponse struct {
	Team     int      `json:"team"`
	Name     string   `json:"name"`
	Floors   []string `json:"floors"`
	IMCU     bool     `json:"imcu"`
	Overflow bool     `json:"overflow"`
}

func newPlacementResponse(result *services.PlaceAdmissionsResult) placementResponse {
	outcome := result.Outcome
	resp := placementResponse{
		RunID:             result.RunID,
		Date:              result.Date,
		Quick:             result.Quick,
		Assignments:       make([]assignmentResponse, 0, len(outcome.Assignments)),
		Skipped:           make([]skippedResponse, 0, len(outcome.Skipped)),
		Notes:             outcome.Notes,
		ClosedTeams:       teamInts(outcome.ClosedTeams.Sorted()),
		ScheduledClosures: newClosureResponses(result.ScheduledClosures),
		Census:            newCensusRows(result.CensusSummary),
		GeographicCount:   result.GeographicCount,
		GeographicRate:    result.GeographicRate,
		ValidationErrors:  make([]validationErrorResponse, 0, len(outcome.ValidationErrors)),
	}
	for _, a := range outcome.Assignments {
		resp.Assignments = append(resp.Assignments, assignmentResponse{
			PatientID:  a.Patient.ID,
			Location:   a.Patient.RawLocation,
			Floor:      string(a.Patient.Floor),
			Clinician:  a.Patient.Clinician,
			Team:       int(a.Team),
			Geographic: a.IsGeographic,
			Reason:     string(a.Reason),
			Detail:     a.Detail,
			Score:      a.Score,
		})
	}
	for _, s := range outcome.Skipped {
		resp.Skipped = append(resp.Skipped, skippedResponse{
			PatientID: s.Patient.ID,
			Location:  s.Patient.RawLocation,
			Warning:   s.Warning,
		})
	}
	for _, v := range outcome.ValidationErrors {
		resp.ValidationErrors = append(resp.ValidationErrors, validationErrorResponse{
			Check:       v.Check,
			Team:        int(v.Team),
			PatientID:   v.PatientID,
			Description: v.Description,
		})
	}
	return resp
}

func newRedistributionResponse(result *services.ShuffleRosterResult, warnings []rosterWarningResponse) redistributionResponse {
	outcome := result.Outcome
	resp := redistributionResponse{
		RunID:             result.RunID,
		Date:              result.Date,
		CorrectlyPlaced:   len(outcome.CorrectlyPlaced),
		NeedsMove:         len(outcome.NeedsMove),
		MoveCount:         result.MoveCount,
		Recommendations:   make([]recommendationResponse, 0, len(outcome.Recommendations)),
		ClosedTeams:       teamInts(outcome.ClosedTeams.Sorted()),
		ScheduledClosures: newClosureResponses(result.ScheduledClosures),
		Census:            newCensusRows(result.CensusSummary),
		Warnings:          warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []rosterWarningResponse{}
	}
	for _, rec := range outcome.Recommendations {
		resp.Recommendations = append(resp.Recommendations, recommendationResponse{
			Room:            rec.Patient.Room,
			Floor:           string(rec.Patient.Floor),
			CurrentTeam:     int(rec.Patient.CurrentTeam),
			AcceptableTeams: teamInts(rec.AcceptableTeams),
			Target:          int(rec.Target),
			Reason:          string(rec.Reason),
			Detail:          rec.Detail,
			Score:           rec.Score,
		})
	}
	return resp
}

func newClosureResponses(closures []config.ScheduledClosure) []closureResponse {
	out := make([]closureResponse, 0, len(closures))
	for _, c := range closures {
		out = append(out, closureResponse{Teams: teamInts(c.Teams), Note: c.Note})
	}
	return out
}

func newCensusRows(rows []services.CensusRow) []censusRowResponse {
	out := make([]censusRowResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, censusRowResponse{
			Team:   int(r.Team),
			Floors: r.Floors,
			Start:  r.Start,
			Delta:  r.Delta,
			Final:  r.Final,
			Closed: r.Closed,
			IMCU:   r.IMCU,
			Status: r.Status,
		})
	}
	return out
}
