package rosterinput

import (
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

// closedMarkers are the census values that mean a team takes no patients today
var closedMarkers = []string{"NA", "N/A", "X", "CLOSED", "-"}

// "Med 4: 12", "4 12", "4=12", "Med 4:" (blank is zero)
var censusLineRe = regexp.MustCompile(`^(?:MED\s*)?(\d{1,2})(?:\s*[:=]\s*|\s+|$)(.*)$`)

// CensusSheet is the parsed census for every team
type CensusSheet struct {
	Census   placement.Census
	Closed   placement.TeamSet
	Warnings []ParseWarning
}

// ParseCensus reads one team per line. Teams not mentioned count as zero and open.
// Only a read failure returns an error.
func ParseCensus(r io.Reader) (*CensusSheet, error) {
	sheet := &CensusSheet{
		Census:   placement.Census{},
		Closed:   placement.NewTeamSet(),
		Warnings: []ParseWarning{},
	}
	seen := make(map[placement.TeamID]bool)

	err := scanLines(r, func(lineNo int, line string) {
		warn := func(format string, args ...any) {
			sheet.Warnings = append(sheet.Warnings, ParseWarning{Line: lineNo, Text: line, Message: fmt.Sprintf(format, args...)})
		}

		match := censusLineRe.FindStringSubmatch(strings.ToUpper(line))
		if match == nil {
			warn("expected a team number and a census value")
			return
		}

		id, _ := strconv.Atoi(match[1])
		team := placement.TeamID(id)
		if !team.Valid() {
			warn("team %d is outside %d-%d", id, placement.MinTeamID, placement.MaxTeamID)
			return
		}
		if seen[team] {
			warn("%s listed more than once, keeping the first value", team)
			return
		}
		seen[team] = true

		value := strings.TrimSpace(match[2])
		switch {
		case value == "":
			sheet.Census[team] = 0
		case slices.Contains(closedMarkers, value):
			sheet.Census[team] = 0
			sheet.Closed[team] = true
		default:
			count, err := strconv.Atoi(value)
			if err != nil {
				warn("census %q is not a number, using 0", value)
				count = 0
			} else if count < 0 {
				warn("census %d is negative, using 0", count)
				count = 0
			}
			sheet.Census[team] = count
		}
	})
	if err != nil {
		return nil, err
	}

	return sheet, nil
}

// ParseClosedTeams reads a list like "14, 15". Tokens that are not team numbers
// inside the universe are ignored.
func ParseClosedTeams(input string) placement.TeamSet {
	closed := placement.NewTeamSet()
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	for _, field := range fields {
		field = strings.TrimPrefix(strings.ToUpper(field), "MED")
		id, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			continue
		}
		if team := placement.TeamID(id); team.Valid() {
			closed[team] = true
		}
	}
	return closed
}
