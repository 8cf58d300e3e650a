// Package cmd implements the relay command-line interface: a cobra root
// command with a single long-running "start" subcommand, plus version.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string
var ignoreCycles bool
var debug bool
var logFile string

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay message bus",
	Long:  "Relay routes and transforms messages between MQTT, OSC and UDP endpoints through a configured block pipeline.",
}

func init() {
	rootCmd.Version = Version
	rootCmd.AddCommand(startCmd, versionCmd)
	rootCmd.PersistentFlags().StringVarP(&configFile, "file", "f", "config.json", "Path to the bus configuration file")
	rootCmd.PersistentFlags().BoolVar(&ignoreCycles, "ignore-cycles", false, "Start even if the block graph contains cycles")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Verbose logging and full message dumps")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to a rotating file instead of the console")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
