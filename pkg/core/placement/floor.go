package placement

import (
	"regexp"
	"strconv"
	"strings"
)

// Room numbering convention:
//
//	X01-X20 = floor X West
//	X30-X49 = floor X East
//	750+, 850+ and every 9xx room = Boyer wing
var (
	bedSuffixPattern      = regexp.MustCompile(`(\d{3})[A-Z]$`)
	floorDirectionPattern = regexp.MustCompile(`(\d+)\s*([EW]|EAST|WEST)`)
	roomPattern           = regexp.MustCompile(`\b(\d)(\d{2})\b`)
	floorWordPattern      = regexp.MustCompile(`FLOOR\s*(\d+)\s*(EAST|WEST|E|W)`)
)

// Room ranges for each side of a floor
const (
	westFirstRoom  = 1
	westLastRoom   = 20
	eastFirstRoom  = 30
	eastLastRoom   = 49
	boyerFirstRoom = 50
)

// NormalizeFloor parses a free text location into a canonical floor label.
//
// Examples:
//
//	"312A"      → "3W"    (room 12 on floor 3)
//	"545B"      → "5E"    (room 45 on floor 5)
//	"877"       → "BOYER" (Boyer wing)
//	"725"       → "7?"    (room 25 falls between the wings)
//	"IMCU"      → "IMCU"
//	"ED-intake" → ""      (any team)
//
// Unrecognized input never fails, it returns FloorNone.
func NormalizeFloor(location string) Floor {
	original := strings.ToUpper(strings.TrimSpace(location))

	// Keyword checks run on the untouched string, in this order
	if strings.Contains(original, "IMCU") {
		return FloorIMCU
	}
	if strings.Contains(original, "OVERNIGHT") || strings.Contains(original, "ONR") || strings.Contains(original, "RECOVERY") {
		return FloorBoyer
	}
	if strings.Contains(original, "ED") || strings.Contains(original, "EMERGENCY") || strings.Contains(original, "ER ") {
		return FloorNone
	}
	if strings.Contains(original, "BOYER") {
		return FloorBoyer
	}

	// A bed letter after a room number never changes the floor ("312A" = "312B")
	cleaned := bedSuffixPattern.ReplaceAllString(original, "$1")

	if m := floorDirectionPattern.FindStringSubmatch(cleaned); m != nil {
		floorNum, direction := m[1], m[2][:1]
		// 9W shares numbering with the Boyer wing
		if floorNum == "9" && direction == "W" {
			return FloorBoyer
		}
		return Floor(floorNum + direction)
	}

	if m := roomPattern.FindStringSubmatch(cleaned); m != nil {
		floorNum := m[1]
		room, _ := strconv.Atoi(m[2])
		return floorFromRoom(floorNum, room)
	}

	if m := floorWordPattern.FindStringSubmatch(cleaned); m != nil {
		return Floor(m[1] + m[2][:1])
	}

	return FloorNone
}

func floorFromRoom(floorNum string, room int) Floor {
	switch {
	case (floorNum == "7" || floorNum == "8") && room >= boyerFirstRoom:
		return FloorBoyer
	case floorNum == "9":
		return FloorBoyer
	case room >= westFirstRoom && room <= westLastRoom:
		return Floor(floorNum + "W")
	case room >= eastFirstRoom && room <= eastLastRoom:
		return Floor(floorNum + "E")
	default:
		return Floor(floorNum + "?")
	}
}
