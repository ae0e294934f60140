package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/geo-placer/pkg/core/placement"
	"github.com/jakechorley/geo-placer/pkg/core/services"
	"github.com/jakechorley/geo-placer/pkg/rosterinput"
)

// PlaceCmd creates the place command
func PlaceCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "place",
		Short: "Assign new admissions to medicine teams",
		Long: `Place a batch of new admissions onto teams by geography, capacity and census balance.

The census file has one team per line ("Med 4: 12", "4 12" or "4=12"); NA, X, CLOSED,
N/A or - marks a team closed. The patients file has one location per line, optionally
followed by "| clinician". Append * to a location to place the patient with the IMCU teams.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			censusPath, _ := cmd.Flags().GetString("census")
			patientsPath, _ := cmd.Flags().GetString("patients")
			closedFlag, _ := cmd.Flags().GetString("closed")
			dateFlag, _ := cmd.Flags().GetString("date")
			quick, _ := cmd.Flags().GetBool("quick")

			app.Logger.Debug("place command",
				zap.String("census", censusPath),
				zap.String("patients", patientsPath),
				zap.String("closed", closedFlag),
				zap.Bool("quick", quick))

			if censusPath == "" && !quick {
				return fmt.Errorf("--census is required unless --quick is set")
			}

			date, err := parseDateFlag(dateFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			census := placement.Census{}
			closed := rosterinput.ParseClosedTeams(closedFlag)
			if !quick {
				f, err := openInput(censusPath)
				if err != nil {
					return err
				}
				sheet, err := rosterinput.ParseCensus(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("failed to parse census: %w", err)
				}
				printWarnings(out, "Census", sheet.Warnings)
				census = sheet.Census
				closed = closed.Union(sheet.Closed)
			}

			f, err := openInput(patientsPath)
			if err != nil {
				return err
			}
			batch, err := rosterinput.ParsePatientLocations(f)
			f.Close()
			if err != nil {
				return fmt.Errorf("failed to parse patients: %w", err)
			}
			printWarnings(out, "Patients", batch.Warnings)
			if len(batch.Patients) == 0 {
				return fmt.Errorf("no patients to place")
			}

			result, err := services.PlaceAdmissions(app.Cfg, app.Logger, services.PlaceAdmissionsRequest{
				Patients:    batch.Patients,
				Census:      census,
				ClosedTeams: closed,
				Date:        date,
				Quick:       quick,
			})
			if err != nil {
				return fmt.Errorf("placement failed: %w", err)
			}

			renderPlacement(out, result)
			return nil
		},
	}

	cmd.Flags().String("census", "", "Census file, one team per line (- for stdin)")
	cmd.Flags().String("patients", "", "Patient locations file, one per line (- for stdin)")
	cmd.Flags().String("closed", "", `Extra closed teams, e.g. "14, 15"`)
	cmd.Flags().String("date", "", "Run date YYYY-MM-DD for scheduled closures (default today)")
	cmd.Flags().Bool("quick", false, "Ignore census and closures, place onto an empty hospital")
	cmd.MarkFlagRequired("patients")

	return cmd
}

func parseDateFlag(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse(services.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return date, nil
}
