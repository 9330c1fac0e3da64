package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/clock"
	"github.com/d-kuro/hyprsession/pkg/filesystem"
	"go.uber.org/zap"
)

// archiveSuffix matches the timestamp suffix appended to archived names,
// including the collision counter.
var archiveSuffix = regexp.MustCompile(`-\d{8}-\d{6}(-\d+)?$`)

// Options configures retention.
type Options struct {
	AutoCleanup bool
	MaxArchives int
}

// Manager archives and recovers sessions. The active and archived
// directories must live on the same filesystem.
type Manager struct {
	activeDir  string
	archiveDir string
	opts       Options
	fs         filesystem.FileSystemInterface
	clock      clock.Clock
	logger     *zap.Logger
}

// NewManager creates a Manager on the real filesystem and clock.
func NewManager(activeDir, archiveDir string, opts Options, logger *zap.Logger) *Manager {
	return NewManagerWithFS(activeDir, archiveDir, opts, filesystem.NewStandardFileSystem(), clock.Real(), logger)
}

// NewManagerWithFS creates a Manager with a custom filesystem and clock.
func NewManagerWithFS(activeDir, archiveDir string, opts Options, fs filesystem.FileSystemInterface, clk clock.Clock, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{
		activeDir:  activeDir,
		archiveDir: archiveDir,
		opts:       opts,
		fs:         fs,
		clock:      clk,
		logger:     logger,
	}
}

// ActiveDir returns the active storage directory.
func (m *Manager) ActiveDir() string { return m.activeDir }

// ArchiveDir returns the archived storage directory.
func (m *Manager) ArchiveDir() string { return m.archiveDir }

// ArchiveResult describes a completed archive.
type ArchiveResult struct {
	OriginalName string
	ArchivedName string
	Path         string
	FileCount    int
	// Evicted lists archives removed by retention.
	Evicted []string
	// CleanupErr is set when some evictions failed. The archive itself
	// succeeded.
	CleanupErr error
}

// ArchivedSession is one entry of archived storage.
type ArchivedSession struct {
	Name             string    `json:"name"`
	Path             string    `json:"path"`
	OriginalName     string    `json:"original_name,omitempty"`
	ArchiveTimestamp time.Time `json:"archive_timestamp"`
	FileCount        int       `json:"file_count"`
	// Corrupt is set when the metadata file is missing or unreadable.
	Corrupt bool `json:"corrupt,omitempty"`
}

// Archive moves the named active session into archived storage under
// <name>-<YYYYMMDD-HHMMSS> and records its metadata. A failure to write the
// metadata moves the directory back.
func (m *Manager) Archive(name string) (*ArchiveResult, error) {
	if err := session.ValidateName(name); err != nil {
		return nil, err
	}

	src := filepath.Join(m.activeDir, name)
	if !m.fs.IsDir(src) {
		return nil, fmt.Errorf("%w: session %q", session.ErrNotFound, name)
	}
	if !m.fs.Exists(filepath.Join(src, session.FileName)) {
		return nil, fmt.Errorf("%w: session %q has no %s", session.ErrNotFound, name, session.FileName)
	}

	fileCount, err := filesystem.CountFiles(m.fs, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", session.ErrFilesystem, err)
	}

	if err := m.fs.MkdirAll(m.archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create archive directory: %v", session.ErrFilesystem, err)
	}

	now := m.clock.Now()
	archivedName := m.uniqueArchiveName(name, now)
	dst := filepath.Join(m.archiveDir, archivedName)

	if err := m.fs.Rename(src, dst); err != nil {
		return nil, fmt.Errorf("%w: failed to move session to archive: %v", session.ErrFilesystem, err)
	}

	meta := ArchiveMetadata{
		OriginalName:     name,
		ArchivedName:     archivedName,
		ArchiveTimestamp: now,
		FileCount:        fileCount,
		ArchiveVersion:   ArchiveVersion,
	}
	if err := writeJSON(m.fs, filepath.Join(dst, MetadataFileName), meta); err != nil {
		if rbErr := m.fs.Rename(dst, src); rbErr != nil {
			m.logger.Error("archive rollback failed",
				zap.String("session", name), zap.String("archived", dst), zap.Error(rbErr))
			return nil, fmt.Errorf("%w: failed to write archive metadata: %v (rollback failed, session left at %s: %v)",
				session.ErrFilesystem, err, dst, rbErr)
		}
		return nil, fmt.Errorf("%w: failed to write archive metadata: %v", session.ErrFilesystem, err)
	}

	m.logger.Info("session archived",
		zap.String("session", name),
		zap.String("archived", archivedName),
		zap.Int("files", fileCount))

	res := &ArchiveResult{
		OriginalName: name,
		ArchivedName: archivedName,
		Path:         dst,
		FileCount:    fileCount,
	}
	if m.opts.AutoCleanup {
		res.Evicted, res.CleanupErr = m.EnforceRetention()
	}
	return res, nil
}

// uniqueArchiveName appends a -N counter when the timestamped name is taken.
func (m *Manager) uniqueArchiveName(name string, ts time.Time) string {
	base := name + "-" + ts.Format(timestampLayout)
	candidate := base
	for n := 1; m.fs.Exists(filepath.Join(m.archiveDir, candidate)); n++ {
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
	return candidate
}

// EnforceRetention deletes the oldest archives with valid metadata until at
// most MaxArchives remain. Archives with unreadable metadata are not counted.
// Every eviction is attempted; failures are joined into the returned error.
func (m *Manager) EnforceRetention() ([]string, error) {
	if m.opts.MaxArchives <= 0 {
		return nil, nil
	}

	archived, err := m.ListArchived()
	if err != nil {
		return nil, err
	}

	valid := make([]ArchivedSession, 0, len(archived))
	for _, a := range archived {
		if !a.Corrupt {
			valid = append(valid, a)
		}
	}
	excess := len(valid) - m.opts.MaxArchives
	if excess <= 0 {
		return nil, nil
	}

	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].ArchiveTimestamp.Equal(valid[j].ArchiveTimestamp) {
			return valid[i].Name < valid[j].Name
		}
		return valid[i].ArchiveTimestamp.Before(valid[j].ArchiveTimestamp)
	})

	var evicted []string
	var errs []error
	for _, a := range valid[:excess] {
		if err := m.fs.RemoveAll(a.Path); err != nil {
			m.logger.Warn("failed to evict archive", zap.String("archive", a.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%w: failed to remove %s: %v", session.ErrFilesystem, a.Name, err))
			continue
		}
		m.logger.Info("evicted archive", zap.String("archive", a.Name))
		evicted = append(evicted, a.Name)
	}
	return evicted, errors.Join(errs...)
}

// ListArchived returns every archived session, newest first. Entries whose
// metadata cannot be read are returned with Corrupt set and sort last.
func (m *Manager) ListArchived() ([]ArchivedSession, error) {
	entries, err := m.fs.ReadDir(m.archiveDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []ArchivedSession{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read archive directory: %v", session.ErrFilesystem, err)
	}

	out := make([]ArchivedSession, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		a := ArchivedSession{Name: name, Path: filepath.Join(m.archiveDir, name)}
		meta, err := readMetadata(m.fs, a.Path)
		if err != nil {
			m.logger.Debug("unreadable archive metadata", zap.String("archive", name), zap.Error(err))
		}
		if v, ok := meta.Get(); ok {
			a.OriginalName = v.OriginalName
			a.ArchiveTimestamp = v.ArchiveTimestamp
			a.FileCount = v.FileCount
		} else {
			a.Corrupt = true
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Corrupt != out[j].Corrupt {
			return !out[i].Corrupt
		}
		return out[i].ArchiveTimestamp.After(out[j].ArchiveTimestamp)
	})
	return out, nil
}

// validateArchivedName checks a user-supplied archive directory name. The
// part before the timestamp suffix must itself be a valid session name.
func validateArchivedName(name string) error {
	base := name
	if loc := archiveSuffix.FindStringIndex(name); loc != nil && loc[0] > 0 {
		base = name[:loc[0]]
	}
	if err := session.ValidateName(base); err != nil {
		return fmt.Errorf("invalid archive name %q: %w", name, err)
	}
	return nil
}
