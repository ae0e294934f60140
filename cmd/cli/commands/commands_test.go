package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/internal/config"
	"github.com/jakechorley/geo-placer/pkg/core/placement"
	"github.com/jakechorley/geo-placer/pkg/core/services"
)

func testApp() *AppContext {
	return &AppContext{
		Cfg:    config.Default(),
		Logger: zap.NewNop(),
		Ctx:    context.Background(),
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPlaceCmd(t *testing.T) {
	census := writeFile(t, "census.txt", "Med 1: 8\nMed 5: 3\nMed 14: NA\n")
	patients := writeFile(t, "patients.txt", "545B\n312A | Dr Shah\nED\n545B\n")

	cmd := PlaceCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--census", census, "--patients", patients, "--date", "2026-10-19"})

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Placement Results")
	assert.Contains(t, text, "duplicate location")
	assert.Contains(t, text, "Closed:      14")
	assert.Contains(t, text, "Dr Shah")
	assert.Contains(t, text, "Geographic: 2/3")
}

func TestPlaceCmd_QuickNeedsNoCensus(t *testing.T) {
	patients := writeFile(t, "patients.txt", "545B\n")

	cmd := PlaceCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--patients", patients, "--quick"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "QUICK")
}

func TestPlaceCmd_Errors(t *testing.T) {
	patients := writeFile(t, "patients.txt", "545B\n")
	empty := writeFile(t, "empty.txt", "\n# nothing\n")

	for name, args := range map[string][]string{
		"census required": {"--patients", patients},
		"bad date":        {"--patients", patients, "--quick", "--date", "19/10/2026"},
		"missing file":    {"--patients", "/nonexistent/patients.txt", "--quick"},
		"no patients":     {"--patients", empty, "--quick"},
	} {
		cmd := PlaceCmd(testApp())
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		assert.Error(t, cmd.Execute(), name)
	}
}

func TestShuffleCmd(t *testing.T) {
	roster := writeFile(t, "roster.txt", "512 Med 7\n513 7\n530 5\nhallway\n")

	cmd := ShuffleCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--roster", roster, "--closed", "14,15"})

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "Redistribution Results")
	assert.Contains(t, text, "no room found")
	assert.Contains(t, text, "Moves:       2")
}

func TestNormalizeCmd(t *testing.T) {
	cmd := NormalizeCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"545B", "614*", "ED", "2W"})

	require.NoError(t, cmd.Execute())

	text := out.String()
	assert.Contains(t, text, "5E (geographic: Med 5, Med 10)")
	assert.Contains(t, text, "IMCU (geographic: Med 1, Med 2, Med 3) [IMCU priority]")
	assert.Contains(t, text, "no floor (any team)")
	assert.Contains(t, text, "2W (any team)")
}

func TestTeamsCmd(t *testing.T) {
	cmd := TeamsCmd(testApp())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "IMCU (hard cap 10)")
	assert.Contains(t, out.String(), "overflow")
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, colorRed, statusColor(services.StatusAtCap))
	assert.Equal(t, colorYellow, statusColor(services.StatusHigh))
	assert.Empty(t, statusColor(""))
}

func TestReasonColor(t *testing.T) {
	assert.Equal(t, colorGreen, reasonColor(placement.ReasonGeographic))
	assert.Equal(t, colorYellow, reasonColor(placement.ReasonBalanceOverride))
	assert.Equal(t, colorRed, reasonColor(placement.ReasonManualReview))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+2", formatDelta(2))
	assert.Equal(t, "-1", formatDelta(-1))
	assert.Empty(t, formatDelta(0))
}

func TestRenderCensusSummary(t *testing.T) {
	rows := services.BuildCensusSummary(placement.DefaultCapacityPolicy(),
		placement.Census{1: 9, 4: 14}, placement.Census{1: 10, 4: 14}, placement.NewTeamSet(15))

	var out bytes.Buffer
	renderCensusSummary(&out, rows, "New")

	text := out.String()
	assert.Contains(t, text, services.StatusAtCap)
	assert.Contains(t, text, services.StatusHigh)
	assert.Contains(t, text, "CLOSED")
	assert.Contains(t, text, "+1")
}
