package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
	"github.com/jakechorley/geo-placer/pkg/core/services"
	"github.com/jakechorley/geo-placer/pkg/rosterinput"
)

// Handler serves the placement API
type Handler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandler creates a Handler
func NewHandler(cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, logger: logger}
}

// RegisterRoutes registers the API routes
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/placements", h.CreatePlacement)
	api.POST("/redistributions", h.CreateRedistribution)
	api.GET("/floors", h.LookupFloor)
	api.GET("/teams", h.ListTeams)
}

// CreatePlacement places a batch of new admissions
func (h *Handler) CreatePlacement(c echo.Context) error {
	var req placementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	patients := make([]placement.Patient, 0, len(req.Patients))
	for i, p := range req.Patients {
		id := p.ID
		if id == "" {
			id = fmt.Sprintf("Pt%d", i+1)
		}
		patients = append(patients, rosterinput.NewPatient(id, p.Location, p.Clinician))
	}

	census := placement.Census{}
	for team, count := range req.Census {
		census[placement.TeamID(team)] = count
	}

	result, err := services.PlaceAdmissions(h.cfg, h.logger, services.PlaceAdmissionsRequest{
		Patients:    patients,
		Census:      census,
		ClosedTeams: toTeamSet(req.ClosedTeams),
		Date:        date,
		Quick:       req.Quick,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, newPlacementResponse(result))
}

// CreateRedistribution audits an existing roster
func (h *Handler) CreateRedistribution(c echo.Context) error {
	var req redistributionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	roster := make([]placement.ExistingPatient, 0, len(req.Roster))
	var warnings []rosterWarningResponse
	for i, entry := range req.Roster {
		team := placement.TeamID(entry.Team)
		if !team.Valid() {
			warnings = append(warnings, rosterWarningResponse{
				Index:   i,
				Room:    entry.Room,
				Team:    entry.Team,
				Message: fmt.Sprintf("invalid team %d, entry skipped", entry.Team),
			})
			h.logger.Warn("Skipping roster entry with invalid team",
				zap.String("room", entry.Room), zap.Int("team", entry.Team))
			continue
		}
		roster = append(roster, placement.NewExistingPatient(entry.Room, team))
	}

	result, err := services.ShuffleRoster(h.cfg, h.logger, services.ShuffleRosterRequest{
		Roster:      roster,
		ClosedTeams: toTeamSet(req.ClosedTeams),
		Date:        date,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, newRedistributionResponse(result, warnings))
}

// LookupFloor normalizes ?location= and lists the teams covering it
func (h *Handler) LookupFloor(c echo.Context) error {
	location := c.QueryParam("location")
	if location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location is required")
	}

	lookup := services.LookupFloor(location)
	return c.JSON(http.StatusOK, floorResponse{
		Location:        lookup.Location,
		Floor:           string(lookup.Floor),
		IMCUOverride:    lookup.IMCUOverride,
		GeographicTeams: teamInts(lookup.GeographicTeams),
	})
}

// ListTeams returns the team table
func (h *Handler) ListTeams(c echo.Context) error {
	teams := services.ListTeams(h.cfg)
	out := make([]teamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, teamResponse{
			Team:     int(t.Team),
			Name:     t.Team.String(),
			Floors:   t.Floors,
			IMCU:     t.IMCU,
			Overflow: t.Overflow,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(services.DateLayout, s)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return date, nil
}

func toTeamSet(ids []int) placement.TeamSet {
	teams := make([]placement.TeamID, 0, len(ids))
	for _, id := range ids {
		teams = append(teams, placement.TeamID(id))
	}
	return placement.NewTeamSet(teams...)
}

func teamInts(teams []placement.TeamID) []int {
	out := make([]int, 0, len(teams))
	for _, t := range teams {
		out = append(out, int(t))
	}
	return out
}
