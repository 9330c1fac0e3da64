// Package finder provides fuzzy finder integration for the hyprsession application.
package finder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/d-kuro/hyprsession/internal/archive"
	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/models"
	"github.com/d-kuro/hyprsession/pkg/utils"
	"github.com/ktr0731/go-fuzzyfinder"
)

// ErrAborted is returned when the user closes the finder without choosing.
var ErrAborted = errors.New("selection aborted")

// SessionLoader loads the full record of a saved session for previews.
type SessionLoader interface {
	Load(name string) (*session.SessionData, error)
}

// Finder provides fuzzy finder functionality.
type Finder struct {
	config       *models.FinderConfig
	loader       SessionLoader
	useTildeHome bool
}

// New creates a new Finder instance. loader may be nil, in which case
// session previews only show the summary.
func New(config *models.FinderConfig, uiConfig *models.UIConfig, loader SessionLoader) *Finder {
	return &Finder{
		config:       config,
		loader:       loader,
		useTildeHome: uiConfig.TildeHome,
	}
}

// SelectSession displays a fuzzy finder for saved session selection.
func (f *Finder) SelectSession(sessions []session.Summary) (*session.Summary, error) {
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions available")
	}

	opts := []fuzzyfinder.Option{
		fuzzyfinder.WithPromptString("Select session> "),
	}

	if f.config.Preview {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return f.generateSessionPreview(sessions[i], h)
		}))
	}

	idx, err := fuzzyfinder.Find(
		sessions,
		func(i int) string {
			return sessionLabel(sessions[i])
		},
		opts...,
	)
	if err != nil {
		return nil, wrapAbort(err)
	}

	return &sessions[idx], nil
}

// SelectArchive displays a fuzzy finder for archived session selection.
func (f *Finder) SelectArchive(archives []archive.ArchivedSession) (*archive.ArchivedSession, error) {
	if len(archives) == 0 {
		return nil, fmt.Errorf("no archived sessions available")
	}

	opts := []fuzzyfinder.Option{
		fuzzyfinder.WithPromptString("Select archive> "),
	}

	if f.config.Preview {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			return f.generateArchivePreview(archives[i], h)
		}))
	}

	idx, err := fuzzyfinder.Find(
		archives,
		func(i int) string {
			return archiveLabel(archives[i])
		},
		opts...,
	)
	if err != nil {
		return nil, wrapAbort(err)
	}

	return &archives[idx], nil
}

func wrapAbort(err error) error {
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return ErrAborted
	}
	return err
}

func sessionLabel(s session.Summary) string {
	if s.Corrupt {
		return fmt.Sprintf("! %s (corrupt)", s.Name)
	}
	return fmt.Sprintf("  %s (%d windows)", s.Name, s.WindowCount)
}

func archiveLabel(a archive.ArchivedSession) string {
	if a.Corrupt {
		return fmt.Sprintf("! %s", a.Name)
	}
	return fmt.Sprintf("  %s <- %s", a.Name, a.OriginalName)
}

// generateSessionPreview generates preview content for a saved session.
func (f *Finder) generateSessionPreview(s session.Summary, maxLines int) string {
	preview := []string{
		fmt.Sprintf("Session: %s", s.Name),
	}
	if s.Corrupt {
		preview = append(preview, "Status: corrupt session file")
		return limitLines(preview, maxLines)
	}

	preview = append(preview,
		fmt.Sprintf("Saved: %s (%s)", s.Timestamp.Local().Format("2006-01-02 15:04"), formatAge(time.Since(s.Timestamp))),
		fmt.Sprintf("Windows: %d", s.WindowCount),
		fmt.Sprintf("Groups: %d", s.GroupCount),
	)

	if f.loader != nil {
		if data, err := f.loader.Load(s.Name); err == nil && len(data.Windows) > 0 {
			preview = append(preview, "", "Windows:")
			for _, w := range data.Windows {
				line := fmt.Sprintf("  [%s] %s", w.Workspace.Name, w.Class)
				if dir, ok := w.WorkingDirectory.Get(); ok {
					line += " " + f.path(dir)
				}
				preview = append(preview, line)
			}
		}
	}

	return limitLines(preview, maxLines)
}

// generateArchivePreview generates preview content for an archived session.
func (f *Finder) generateArchivePreview(a archive.ArchivedSession, maxLines int) string {
	preview := []string{
		fmt.Sprintf("Archive: %s", a.Name),
		fmt.Sprintf("Path: %s", f.path(a.Path)),
	}
	if a.Corrupt {
		preview = append(preview, "Metadata: missing or unreadable")
		return limitLines(preview, maxLines)
	}

	preview = append(preview,
		fmt.Sprintf("Original name: %s", a.OriginalName),
		fmt.Sprintf("Archived: %s (%s)", a.ArchiveTimestamp.Local().Format("2006-01-02 15:04"), formatAge(time.Since(a.ArchiveTimestamp))),
		fmt.Sprintf("Files: %d", a.FileCount),
	)
	return limitLines(preview, maxLines)
}

func (f *Finder) path(p string) string {
	if f.useTildeHome {
		return utils.TildePath(p)
	}
	return p
}

func limitLines(lines []string, maxLines int) string {
	return strings.Join(lines[:utils.Min(len(lines), maxLines)], "\n")
}

func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
