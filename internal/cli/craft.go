package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
	"github.com/danieljhkim/stratum/internal/hash"
)

var craftDryRun bool

var craftCmd = &cobra.Command{
	Use:   "craft <profile>",
	Short: "Compose a profile and commit it to the store",
	Long: `Resolve a profile's ancestors, compose every layer into a staging tree
and commit the result to the store.

Ancestors are applied first. Files present in several layers are
concatenated in layer order. Each profile's <profile>.end tree is applied
after all main layers, most specific profile first.

With --dry-run the staged tree is printed instead of committed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Craft(ctx, &engine.CraftRequest{
			Profile: args[0],
			DryRun:  craftDryRun,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), result)
		}

		PrintSection(fmt.Sprintf("Layers of %s", result.Profile))
		layers := make([]string, len(result.Layers))
		for i, l := range result.Layers {
			layers[i] = l.String()
		}
		PrintNumberedList(layers, 1)
		fmt.Println()

		if !result.Committed {
			if len(result.Files) == 0 {
				PrintEmptyState("Nothing staged")
				return nil
			}
			if err := renderTree(cmd.OutOrStdout(), result.Profile, result.Files); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			if err := hash.Write(cmd.OutOrStdout(), result.Files); err != nil {
				return err
			}
			PrintWarning(fmt.Sprintf("Dry run: %s staged, nothing committed", PrintCount(len(result.Files), "file", "files")))
			return nil
		}

		PrintSuccess(fmt.Sprintf("Committed %q", result.Message))
		return nil
	},
}

func init() {
	craftCmd.Flags().BoolVar(&craftDryRun, "dry-run", false, "Print the staged tree without committing")
}
