package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Show detailed version information including build details.`,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		showVersion(cmd.OutOrStdout(), info)
	},
}

func showVersion(w io.Writer, info *debug.BuildInfo) {
	if info == nil {
		// Fallback to compile-time variables
		_, _ = fmt.Fprintf(w, "hyprsession version %s\n", version)
		_, _ = fmt.Fprintf(w, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(w, "  built: %s\n", date)
		_, _ = fmt.Fprintf(w, "  go: %s\n", runtime.Version())
		_, _ = fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return
	}

	_, _ = fmt.Fprintf(w, "hyprsession version %s\n", getVersion(info))

	vcs := make(map[string]string)
	for _, setting := range info.Settings {
		vcs[setting.Key] = setting.Value
	}
	if rev := vcs["vcs.revision"]; rev != "" {
		_, _ = fmt.Fprintf(w, "  commit: %s\n", rev)
		if vcs["vcs.modified"] == "true" {
			_, _ = fmt.Fprintln(w, "  modified: true")
		}
	}
	if t := vcs["vcs.time"]; t != "" {
		_, _ = fmt.Fprintf(w, "  built: %s\n", t)
	}

	_, _ = fmt.Fprintf(w, "  go: %s\n", info.GoVersion)
	_, _ = fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func getVersion(info *debug.BuildInfo) string {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	if version != "dev" {
		return version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			if len(setting.Value) > 7 {
				return setting.Value[:7]
			}
			return setting.Value
		}
	}
	return "dev"
}
