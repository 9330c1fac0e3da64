// Package cmd provides CLI commands for the hyprsession application.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/d-kuro/hyprsession/internal/config"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hyprsession",
	Short: "Hyprland session manager",
	Long: `hyprsession saves and restores Hyprland desktop sessions.

It records the running applications, their workspaces, tab groups and
swallowing terminals, and relaunches them in an order that rebuilds the
groups. Sessions that are no longer needed can be archived and recovered
later.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
