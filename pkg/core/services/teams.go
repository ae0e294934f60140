package services

import (
	"strings"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
	"github.com/jakechorley/geo-placer/pkg/rosterinput"
)

// Census status labels
const (
	StatusAtCap = "AT CAP"
	StatusHigh  = "HIGH"
)

// CensusRow is one line of the census summary table
type CensusRow struct {
	Team   placement.TeamID
	Floors []string
	Start  int
	Final  int
	Closed bool
	IMCU   bool

	// Delta is the net change over the run
	Delta int

	// Status is AT CAP for IMCU teams at the hard cap, HIGH for other teams at or over
	// the soft cap, empty otherwise
	Status string
}

// BuildCensusSummary produces one row per team in the universe
func BuildCensusSummary(policy placement.CapacityPolicy, start, final placement.Census, closed placement.TeamSet) []CensusRow {
	geography := placement.DefaultGeography()
	rows := make([]CensusRow, 0, int(placement.MaxTeamID))
	for _, team := range placement.AllTeams() {
		row := CensusRow{
			Team:   team,
			Floors: geography.TeamFloors(team),
			Start:  start.Get(team),
			Final:  final.Get(team),
			Closed: closed.Contains(team),
			IMCU:   policy.IsIMCU(team),
		}
		row.Delta = row.Final - row.Start
		switch {
		case policy.AtHardCap(team, row.Final):
			row.Status = StatusAtCap
		case !row.IMCU && row.Final >= policy.SoftCap:
			row.Status = StatusHigh
		}
		rows = append(rows, row)
	}
	return rows
}

// TeamInfo describes one team's coverage
type TeamInfo struct {
	Team     placement.TeamID
	Floors   []string
	IMCU     bool
	Overflow bool
}

// ListTeams returns the team table under the configured policy
func ListTeams(cfg *config.Config) []TeamInfo {
	policy := cfg.Policy()
	geography := placement.DefaultGeography()
	teams := make([]TeamInfo, 0, int(placement.MaxTeamID))
	for _, team := range placement.AllTeams() {
		teams = append(teams, TeamInfo{
			Team:     team,
			Floors:   geography.TeamFloors(team),
			IMCU:     policy.IsIMCU(team),
			Overflow: policy.IsOverflow(team),
		})
	}
	return teams
}

// FloorLookup is the normalized view of one location
type FloorLookup struct {
	Location        string
	Floor           placement.Floor
	IMCUOverride    bool
	GeographicTeams []placement.TeamID
}

// LookupFloor normalizes a location, honouring the IMCU override marker
func LookupFloor(location string) FloorLookup {
	patient := rosterinput.NewPatient("", location, "")
	return FloorLookup{
		Location:        location,
		Floor:           patient.Floor,
		IMCUOverride:    strings.HasSuffix(patient.RawLocation, rosterinput.IMCUOverrideMarker),
		GeographicTeams: placement.DefaultGeography().GeographicTeams(patient.Floor),
	}
}
