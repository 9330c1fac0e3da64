package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	showJSON bool
	showYAML bool
)

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the windows of a session",
	Long: `Show every window recorded in a saved session, including its group,
swallowing partner and working directory.

If no name is provided, shows a fuzzy finder to select the session.`,
	Example: `  # Show "work" as a table
  hyprsession show work

  # Dump the record as YAML
  hyprsession show --yaml work`,
	Args:              cobra.MaximumNArgs(1),
	RunE:              ExecuteWithArgs(runShow),
	ValidArgsFunction: getSessionCompletions,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Output as YAML")
	showCmd.MarkFlagsMutuallyExclusive("json", "yaml")
}

func runShow(ctx *CommandContext, cmd *cobra.Command, args []string) error {
	name, err := ctx.SelectSession(args)
	if err != nil {
		return err
	}

	data, err := ctx.Store.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	switch {
	case showJSON:
		return ctx.Printer.PrintJSON(data)
	case showYAML:
		return ctx.Printer.PrintYAML(data)
	default:
		ctx.Printer.PrintSessionDetail(name, data)
		return nil
	}
}
