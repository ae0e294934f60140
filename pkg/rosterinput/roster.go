package rosterinput

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

var (
	rosterRoomRe = regexp.MustCompile(`(?i)\b(\d{3}[A-Z]?)\b`)
	rosterTeamRe = regexp.MustCompile(`(?i)(?:Med\s*)?(\d{1,2})\b`)
)

// Roster is a parsed list of patients already on teams
type Roster struct {
	Patients []placement.ExistingPatient
	Warnings []ParseWarning
}

// ParseRoster reads "room team" lines such as "304A 1" or "534 Med 10".
// The first room on a line is used and the team is read from the text after it.
// A room seen twice keeps its first team.
func ParseRoster(r io.Reader) (*Roster, error) {
	roster := &Roster{
		Patients: []placement.ExistingPatient{},
		Warnings: []ParseWarning{},
	}
	seen := make(map[string]bool)

	err := scanLines(r, func(lineNo int, line string) {
		warn := func(msg string) {
			roster.Warnings = append(roster.Warnings, ParseWarning{Line: lineNo, Text: line, Message: msg})
		}

		loc := rosterRoomRe.FindStringSubmatchIndex(line)
		if loc == nil {
			warn("no room found")
			return
		}
		room := strings.ToUpper(line[loc[2]:loc[3]])

		teamMatch := rosterTeamRe.FindStringSubmatch(line[loc[1]:])
		if teamMatch == nil {
			warn("no team found")
			return
		}
		id, _ := strconv.Atoi(teamMatch[1])
		team := placement.TeamID(id)
		if !team.Valid() {
			warn("invalid team " + teamMatch[1])
			return
		}

		if seen[room] {
			warn("room " + room + " already listed, skipped")
			return
		}
		seen[room] = true

		roster.Patients = append(roster.Patients, placement.NewExistingPatient(room, team))
	})
	if err != nil {
		return nil, err
	}

	return roster, nil
}
