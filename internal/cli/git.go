package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/stratum/internal/engine"
)

var gitCmd = &cobra.Command{
	Use:   "git [args...]",
	Short: "Run git against the store",
	Long: `Run an arbitrary git command with the store as the git directory and the
destination as the work tree.

All arguments are passed to git unchanged, for example:
  stratum git log --oneline
  stratum git diff

Use STRATUM_STORAGE and STRATUM_DESTINATION or the config file to point at
a different store; flags after "git" belong to git.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := newEngine()
		if err != nil {
			return err
		}

		return eng.Git(ctx, &engine.GitRequest{Args: args})
	},
}
