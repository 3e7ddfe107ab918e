package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var digestToo bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Recompute priorities of open tasks once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		checked, changed, err := a.priorities.RunPeriodicCheck(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d tasks, changed: %v\n", checked, changed)

		if digestToo {
			text, err := a.digest.Summary(cmd.Context(), nowIn(a.loc))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&digestToo, "digest", false, "Also print the open-task summary")
}
