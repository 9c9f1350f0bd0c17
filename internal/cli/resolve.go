package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <profile>",
	Short: "Show the layering order of a profile",
	Long: `Show the order in which a profile's layers would be applied.

The resolver order lists the profile first and its root ancestors last.
Layers are applied root-most first, followed by end overlays.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Resolve(ctx, &engine.ResolveRequest{Profile: args[0]})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), result)
		}

		PrintSection(fmt.Sprintf("Profile %s", result.Profile))
		PrintLabelValue("Ancestors", PrintCount(len(result.Order)-1, "profile", "profiles"))
		fmt.Println()
		layers := make([]string, len(result.Layers))
		for i, l := range result.Layers {
			layers[i] = l.String()
		}
		PrintNumberedList(layers, 1)
		return nil
	},
}
