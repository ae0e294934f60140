package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/geo-placer/pkg/core/services"
)

// TeamsCmd creates the teams command
func TeamsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "teams",
		Short: "List teams with the floors they cover",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			policy := app.Cfg.Policy()

			fmt.Fprintf(out, "%s%-8s  %-24s  %s%s\n", colorBold, "Team", "Floors", "Role", colorReset)
			fmt.Fprintln(out, strings.Repeat("-", 50))
			for _, t := range services.ListTeams(app.Cfg) {
				role := ""
				switch {
				case t.IMCU:
					role = fmt.Sprintf("IMCU (hard cap %d)", policy.IMCUHardCap)
				case t.Overflow:
					role = "overflow"
				}
				fmt.Fprintf(out, "%-8s  %-24s  %s\n", t.Team, strings.Join(t.Floors, ", "), role)
			}
			fmt.Fprintf(out, "\nSoft cap %d, balance gap %d, equity limit %d new per team\n",
				policy.SoftCap, policy.MaxCensusGap, policy.MaxNewBeforeSpread)
			return nil
		},
	}
}
