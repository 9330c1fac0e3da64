package cmd

import (
	"fmt"
	"strings"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/config"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// completionManager builds an archive manager without logging for shell
// completion, where any output would corrupt the candidates.
func completionManager() (*session.Store, *archive.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := zap.NewNop()
	store := session.NewStore(cfg.Storage.SessionsDir, logger)
	mgr := archive.NewManager(cfg.Storage.SessionsDir, cfg.Storage.ArchiveDir, archive.Options{}, logger)
	return store, mgr, nil
}

// getSessionCompletions returns saved session names for shell completion
func getSessionCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	store, _, err := completionManager()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	sessions, err := store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, s := range sessions {
		if !strings.HasPrefix(s.Name, toComplete) {
			continue
		}
		desc := fmt.Sprintf("%d windows", s.WindowCount)
		if s.Corrupt {
			desc = "corrupt"
		}
		completions = append(completions, fmt.Sprintf("%s\t%s", s.Name, desc))
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// getArchiveCompletions returns archived session names for shell completion
func getArchiveCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	_, mgr, err := completionManager()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	archives, err := mgr.ListArchived()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, a := range archives {
		if !strings.HasPrefix(a.Name, toComplete) {
			continue
		}
		desc := "Original: " + a.OriginalName
		if a.Corrupt {
			desc = "no metadata"
		}
		completions = append(completions, fmt.Sprintf("%s\t%s", a.Name, desc))
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// getMarkerCompletions returns recovery marker names for shell completion
func getMarkerCompletions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	_, mgr, err := completionManager()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	found, err := mgr.CheckInterruptedRecoveries()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, ir := range found {
		if strings.HasPrefix(ir.MarkerName, toComplete) {
			completions = append(completions, fmt.Sprintf("%s\tState: %s", ir.MarkerName, ir.State))
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}

// configKeys lists the settable configuration keys.
var configKeys = []struct {
	name string
	desc string
}{
	{"storage.sessions_dir", "Directory of saved sessions"},
	{"storage.archive_dir", "Directory of archived sessions"},
	{"restore.delay", "Wait after each launch"},
	{"restore.swallow_multiplier", "Delay multiplier for swallowing launches"},
	{"restore.terminal", "Terminal used to relaunch swallowed windows"},
	{"restore.switch_workspace", "Switch to the saved workspace before restoring"},
	{"archive.auto_cleanup", "Remove old archives automatically"},
	{"archive.max_archives", "Number of archives to keep"},
	{"hypr.command", "hyprctl executable"},
	{"log.level", "Log level"},
	{"log.development", "Human readable log output"},
	{"finder.preview", "Enable preview window"},
	{"ui.color", "Enable colored output"},
	{"ui.icons", "Enable icon display"},
	{"ui.tilde_home", "Display home directory as ~"},
}

// getConfigKeyCompletions returns config key names for shell completion
func getConfigKeyCompletions(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, key := range configKeys {
		if strings.HasPrefix(key.name, toComplete) {
			completions = append(completions, fmt.Sprintf("%s\t%s", key.name, key.desc))
		}
	}

	return completions, cobra.ShellCompDirectiveNoFileComp
}
