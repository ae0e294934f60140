package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeographicTeams_DirectFloors(t *testing.T) {
	g := DefaultGeography()

	assert.Equal(t, []TeamID{1, 2, 3}, g.GeographicTeams("3W"))
	assert.Equal(t, []TeamID{1, 2, 3}, g.GeographicTeams(FloorIMCU))
	assert.Equal(t, []TeamID{5, 10}, g.GeographicTeams("5E"))
	assert.Equal(t, []TeamID{8, 13}, g.GeographicTeams("8W"))
	assert.Equal(t, []TeamID{12, 6}, g.GeographicTeams(FloorBoyer), "Boyer primary team comes first")
}

func TestGeographicTeams_AmbiguousFloorIsUnionOfBothSides(t *testing.T) {
	g := NewGeography(map[Floor][]TeamID{
		"4E": {4, 11},
		"4W": {4, 7},
	}, nil)

	assert.Equal(t, []TeamID{4, 7, 11}, g.GeographicTeams("4?"))
	assert.Equal(t, []TeamID{5, 10}, DefaultGeography().GeographicTeams("5?"))
}

func TestGeographicTeams_NoConstraint(t *testing.T) {
	g := DefaultGeography()

	assert.Empty(t, g.GeographicTeams(FloorNone))
	assert.Empty(t, g.GeographicTeams("2W"))
	assert.Empty(t, g.GeographicTeams("9?"))
}

func TestGeographicTeams_ReturnsCopy(t *testing.T) {
	g := DefaultGeography()

	teams := g.GeographicTeams("5E")
	teams[0] = 99

	assert.Equal(t, []TeamID{5, 10}, g.GeographicTeams("5E"))
}

func TestNewGeography_DropsTeamsOutsideUniverse(t *testing.T) {
	g := NewGeography(map[Floor][]TeamID{
		"5e": {0, 5, 5, 16, 10},
	}, map[TeamID][]string{
		5:  {"5E"},
		42: {"Nowhere"},
	})

	assert.Equal(t, []TeamID{5, 10}, g.GeographicTeams("5E"))
	assert.Equal(t, []string{"5E"}, g.TeamFloors(5))
	assert.Empty(t, g.TeamFloors(42))
}

func TestTeamFloors_Display(t *testing.T) {
	g := DefaultGeography()

	assert.Contains(t, g.TeamFloors(12), "Boyer")
	assert.Equal(t, []string{"Overflow"}, g.TeamFloors(14))
}
