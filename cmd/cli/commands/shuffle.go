package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/pkg/core/services"
	"github.com/jakechorley/geo-placer/pkg/rosterinput"
)

// ShuffleCmd creates the shuffle command
func ShuffleCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "Recommend moves for patients on a geographically wrong team",
		Long: `Audit an existing roster and recommend a team for every patient whose current
team does not cover their floor. The roster file has one "room team" pair per line,
e.g. "304A 1" or "534 Med 10".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rosterPath, _ := cmd.Flags().GetString("roster")
			closedFlag, _ := cmd.Flags().GetString("closed")
			dateFlag, _ := cmd.Flags().GetString("date")

			app.Logger.Debug("shuffle command",
				zap.String("roster", rosterPath),
				zap.String("closed", closedFlag))

			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			f, err := openInput(rosterPath)
			if err != nil {
				return err
			}
			roster, err := rosterinput.ParseRoster(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to parse roster: %w", err)
			}
			printWarnings(out, "Roster", roster.Warnings)
			if len(roster.Patients) == 0 {
				return fmt.Errorf("no patients in roster")
			}

			result, err := services.ShuffleRoster(app.Cfg, app.Logger, services.ShuffleRosterRequest{
				Roster:      roster.Patients,
				ClosedTeams: rosterinput.ParseClosedTeams(closedFlag),
				Date:        date,
			})
			if err != nil {
				return fmt.Errorf("redistribution failed: %w", err)
			}

			renderRedistribution(out, result)
			return nil
		},
	}

	cmd.Flags().String("roster", "", "Roster file, one room and team per line (- for stdin)")
	cmd.Flags().String("closed", "", `Closed teams, e.g. "14, 15"`)
	cmd.Flags().String("date", "", "Run date YYYY-MM-DD for scheduled closures (default today)")
	cmd.MarkFlagRequired("roster")

	return cmd
}
