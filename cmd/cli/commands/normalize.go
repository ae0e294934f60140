package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jakechorley/geo-placer/pkg/core/services"
)

// NormalizeCmd creates the normalize command
func NormalizeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <location>...",
		Short: "Show the floor and covering teams for each location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, location := range args {
				lookup := services.LookupFloor(location)
				fmt.Fprintf(out, "%-16s → %s\n", location, describeLookup(lookup))
			}
			return nil
		},
	}
}

func describeLookup(lookup services.FloorLookup) string {
	if len(lookup.GeographicTeams) == 0 {
		if lookup.Floor == "" {
			return "no floor (any team)"
		}
		return fmt.Sprintf("%s (any team)", lookup.Floor)
	}

	names := make([]string, 0, len(lookup.GeographicTeams))
	for _, t := range lookup.GeographicTeams {
		names = append(names, t.String())
	}
	desc := fmt.Sprintf("%s (geographic: %s)", lookup.Floor, strings.Join(names, ", "))
	if lookup.IMCUOverride {
		desc += " [IMCU priority]"
	}
	return desc
}
