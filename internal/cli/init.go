package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the bare git store",
	Long: `Create an empty bare git repository at the storage location.

Fails if anything already exists at that path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Init(ctx, &engine.InitRequest{})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), result)
		}

		PrintSuccess(fmt.Sprintf("Initialized store at %s", result.Location))
		return nil
	},
}
