package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/builtin"
)

var algorithmsCmd = &cobra.Command{
	Use:   "algorithms",
	Short: "List the routing algorithms and applications nodes can run.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		listAlgorithms(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(algorithmsCmd)
}

func listAlgorithms(w io.Writer) {
	reg := builtin.NewRegistry()

	fmt.Fprintln(w, "routing:")
	for _, name := range reg.RouterNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}

	fmt.Fprintln(w, "applications:")
	for _, name := range reg.ApplicationNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
}
