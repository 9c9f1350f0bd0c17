package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Interactively check the store out into the destination",
	Long: `Check the latest crafted commit out into the destination directory.

Runs git checkout -p so every hunk can be accepted or rejected before it
touches your files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		if err := eng.Apply(ctx, &engine.ApplyRequest{}); err != nil {
			return err
		}

		PrintSuccess("Apply finished")
		return nil
	},
}
