package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/builtin"
	"github.com/sarchlab/netsim/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate SCENARIO...",
	Short: "Check scenarios without running them.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0

		for _, path := range args {
			if err := validateScenario(path, cmd.OutOrStdout()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				failed++
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d scenarios are invalid",
				failed, len(args))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateScenario(path string, w io.Writer) error {
	s, err := config.Load(path)
	if err != nil {
		return err
	}

	if err := s.Validate(builtin.NewRegistry()); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d nodes, %d links, %d events\n",
		path, len(s.Nodes), len(s.Links), len(s.Events))

	return nil
}
