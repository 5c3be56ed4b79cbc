// Package cmd provides the command-line interface of netsim.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var envFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netsim",
	Short: "netsim simulates packet networks in virtual time.",
	Long: `netsim simulates packet networks in virtual time. A scenario file ` +
		`describes the nodes, the links that join them and the events to ` +
		`replay, and each node runs a routing algorithm and an application.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return loadEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"File to read NETSIM_* defaults from, if it exists.")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits the process through atexit so that trace files
// are flushed.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
