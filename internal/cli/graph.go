package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
	"github.com/danieljhkim/stratum/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the profile inheritance graph",
	Long: `Print every profile and its declared parents in Graphviz DOT format.

Pipe the output to dot to render it, for example:
  stratum graph | dot -Tsvg > profiles.svg`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.Graph(ctx, &engine.GraphRequest{})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(cmd.OutOrStdout(), result)
		}

		return graph.WriteDOT(cmd.OutOrStdout(), "Profiles", result.Nodes)
	},
}
