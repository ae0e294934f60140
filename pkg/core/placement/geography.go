package placement

import (
	"slices"
	"strings"
)

// Geography maps floors to the teams that physically cover them.
// It is immutable once built; lookups return copies.
type Geography struct {
	floorTeams map[Floor][]TeamID
	teamFloors map[TeamID][]string
}

// NewGeography builds a Geography from floor → teams and team → display floors tables.
// Team order for a floor is significant: the first team is the primary team and wins ties.
func NewGeography(floorTeams map[Floor][]TeamID, teamFloors map[TeamID][]string) *Geography {
	g := &Geography{
		floorTeams: make(map[Floor][]TeamID, len(floorTeams)),
		teamFloors: make(map[TeamID][]string, len(teamFloors)),
	}
	for floor, teams := range floorTeams {
		valid := make([]TeamID, 0, len(teams))
		for _, t := range teams {
			if t.Valid() && !slices.Contains(valid, t) {
				valid = append(valid, t)
			}
		}
		g.floorTeams[Floor(strings.ToUpper(string(floor)))] = valid
	}
	for team, floors := range teamFloors {
		if team.Valid() {
			g.teamFloors[team] = slices.Clone(floors)
		}
	}
	return g
}

// DefaultGeography returns the hospital's floor coverage
func DefaultGeography() *Geography {
	return NewGeography(
		map[Floor][]TeamID{
			"3W":       {1, 2, 3},
			"3E":       {1, 2, 3},
			"4W":       {4, 11},
			"4E":       {4, 11},
			"5W":       {5, 10},
			"5E":       {5, 10},
			"6W":       {6, 12},
			"6E":       {6, 12},
			"7W":       {7, 9},
			"7E":       {7, 9},
			"8W":       {8, 13},
			"8E":       {8, 13},
			FloorIMCU:  {1, 2, 3},
			FloorBoyer: {12, 6}, // Med 12 first, Med 6 as fallback
		},
		map[TeamID][]string{
			1:  {"3W", "3E", "IMCU"},
			2:  {"3W", "3E", "IMCU"},
			3:  {"3W", "3E", "IMCU"},
			4:  {"4E", "4W"},
			5:  {"5E", "5W"},
			6:  {"6E", "6W"},
			7:  {"7E", "7W"},
			8:  {"8E"},
			9:  {"7E", "7W"},
			10: {"5E", "5W"},
			11: {"4E", "4W"},
			12: {"6E", "6W", "Boyer"},
			13: {"8E"},
			14: {"Overflow"},
			15: {"Overflow"},
		},
	)
}

// GeographicTeams returns the teams covering a floor.
// Ambiguous floors ("5?") return the union of that floor's East and West teams in
// ascending order. FloorNone and unmapped floors return an empty slice.
func (g *Geography) GeographicTeams(floor Floor) []TeamID {
	if floor == FloorNone {
		return []TeamID{}
	}
	if teams, ok := g.floorTeams[floor]; ok {
		return slices.Clone(teams)
	}
	if floor.IsAmbiguous() {
		floorNum := string(floor[:len(floor)-1])
		union := NewTeamSet(g.floorTeams[Floor(floorNum+"E")]...).
			Union(NewTeamSet(g.floorTeams[Floor(floorNum+"W")]...))
		return union.Sorted()
	}
	return []TeamID{}
}

// TeamFloors returns the floors a team covers, for display
func (g *Geography) TeamFloors(team TeamID) []string {
	return slices.Clone(g.teamFloors[team])
}

// Floors returns every mapped floor label in sorted order
func (g *Geography) Floors() []Floor {
	floors := make([]Floor, 0, len(g.floorTeams))
	for f := range g.floorTeams {
		floors = append(floors, f)
	}
	slices.Sort(floors)
	return floors
}
