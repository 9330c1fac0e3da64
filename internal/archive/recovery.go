package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/filesystem"
	"github.com/d-kuro/hyprsession/pkg/option"
	"github.com/d-kuro/hyprsession/pkg/result"
	"go.uber.org/zap"
)

// FallbackName is used when no usable name can be derived from an archive.
const FallbackName = "recovered-session"

// ErrNeedsRepair marks an interrupted recovery that cannot be reconciled
// automatically.
var ErrNeedsRepair = errors.New("interrupted recovery needs manual repair")

// NameSource tells where a recovery target name came from.
type NameSource string

const (
	SourceExplicit     NameSource = "explicit"
	SourceMetadata     NameSource = "metadata"
	SourceArchivedName NameSource = "archived-name"
	SourceFallback     NameSource = "fallback"
)

// TargetName is a resolved recovery target.
type TargetName struct {
	Name   string
	Source NameSource
}

// RecoveryResult describes a completed recovery.
type RecoveryResult struct {
	ArchivedName string
	Target       TargetName
	Path         string
	FileCount    int
}

// OriginalNameFromArchived strips the timestamp suffix from an archived
// directory name. None means the name does not carry the suffix.
func OriginalNameFromArchived(archivedName string) option.Option[string] {
	loc := archiveSuffix.FindStringIndex(archivedName)
	if loc == nil || loc[0] == 0 {
		return option.None[string]()
	}
	return option.Some(archivedName[:loc[0]])
}

// ResolveTargetName picks the recovery target: the explicit name, else the
// original name from metadata, else the name encoded in the archived
// directory name, else FallbackName. Every derived candidate is validated and
// skipped when invalid; an invalid explicit name is an error.
func ResolveTargetName(archivedName string, meta option.Option[ArchiveMetadata], newName option.Option[string]) result.Result[TargetName] {
	if name, ok := newName.Get(); ok {
		if err := session.ValidateName(name); err != nil {
			return result.Err[TargetName](err)
		}
		return result.Ok(TargetName{Name: name, Source: SourceExplicit})
	}

	valid := func(name string) bool { return session.ValidateName(name) == nil }

	fromMeta := option.Map(meta, func(m ArchiveMetadata) string { return m.OriginalName }).Filter(valid)
	if name, ok := fromMeta.Get(); ok {
		return result.Ok(TargetName{Name: name, Source: SourceMetadata})
	}

	if name, ok := OriginalNameFromArchived(archivedName).Filter(valid).Get(); ok {
		return result.Ok(TargetName{Name: name, Source: SourceArchivedName})
	}

	return result.Ok(TargetName{Name: FallbackName, Source: SourceFallback})
}

// Recover moves an archived session back into active storage.
//
// A marker file is written to active storage before the directory is moved
// and removed once the recovered directory no longer carries archive
// metadata. A failure after the move puts the directory back; if that also
// fails, the marker is kept so CheckInterruptedRecoveries can find it.
func (m *Manager) Recover(archivedName string, newName option.Option[string]) (*RecoveryResult, error) {
	if err := validateArchivedName(archivedName); err != nil {
		return nil, err
	}

	src := filepath.Join(m.archiveDir, archivedName)
	if !m.fs.IsDir(src) {
		return nil, fmt.Errorf("%w: archive %q", session.ErrNotFound, archivedName)
	}

	meta, err := readMetadata(m.fs, src)
	if err != nil {
		m.logger.Warn("ignoring unreadable archive metadata", zap.String("archive", archivedName), zap.Error(err))
	}

	target, err := ResolveTargetName(archivedName, meta, newName).Get()
	if err != nil {
		return nil, err
	}
	if target.Source == SourceFallback {
		m.logger.Warn("no usable name in archive, using fallback",
			zap.String("archive", archivedName), zap.String("target", target.Name))
	}

	dst := filepath.Join(m.activeDir, target.Name)
	if m.fs.Exists(dst) {
		return nil, fmt.Errorf("%w: session %q", session.ErrAlreadyExists, target.Name)
	}

	fileCount := option.Map(meta, func(v ArchiveMetadata) int { return v.FileCount }).UnwrapOrElse(func() int {
		n, _ := filesystem.CountFiles(m.fs, src)
		return n
	})

	if err := m.fs.MkdirAll(m.activeDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create session directory: %v", session.ErrFilesystem, err)
	}

	markerPath := filepath.Join(m.activeDir, MarkerFileName(target.Name))
	marker := RecoveryMarker{
		TargetName:        target.Name,
		ArchivedDir:       src,
		RecoveryTimestamp: m.clock.Now(),
		RecoveryVersion:   RecoveryVersion,
		FileCount:         fileCount,
	}
	if err := writeJSON(m.fs, markerPath, marker); err != nil {
		return nil, fmt.Errorf("%w: failed to write recovery marker: %v", session.ErrFilesystem, err)
	}

	if err := m.completeRecovery(src, dst, markerPath); err != nil {
		return nil, m.rollbackRecovery(src, dst, markerPath, meta, err)
	}

	m.logger.Info("session recovered",
		zap.String("archive", archivedName),
		zap.String("session", target.Name),
		zap.String("name_source", string(target.Source)))

	return &RecoveryResult{
		ArchivedName: archivedName,
		Target:       target,
		Path:         dst,
		FileCount:    fileCount,
	}, nil
}

func (m *Manager) completeRecovery(src, dst, markerPath string) error {
	if err := m.fs.Rename(src, dst); err != nil {
		return fmt.Errorf("%w: failed to move archive into place: %v", session.ErrFilesystem, err)
	}
	if err := removeIfExists(m.fs, filepath.Join(dst, MetadataFileName)); err != nil {
		return fmt.Errorf("%w: failed to remove archive metadata: %v", session.ErrFilesystem, err)
	}
	if err := m.fs.Remove(markerPath); err != nil {
		return fmt.Errorf("%w: failed to remove recovery marker: %v", session.ErrFilesystem, err)
	}
	return nil
}

// rollbackRecovery returns the directory to the archive after a failed
// recovery and wraps cause with the rollback outcome.
func (m *Manager) rollbackRecovery(src, dst, markerPath string, meta option.Option[ArchiveMetadata], cause error) error {
	if m.fs.Exists(dst) && !m.fs.Exists(src) {
		if err := m.fs.Rename(dst, src); err != nil {
			m.logger.Error("recovery rollback failed, keeping marker",
				zap.String("archive", src), zap.String("session", dst),
				zap.String("marker", markerPath), zap.Error(err))
			return fmt.Errorf("%w (rollback failed: %v; marker kept at %s)", cause, err, markerPath)
		}
		if v, ok := meta.Get(); ok {
			if err := writeJSON(m.fs, filepath.Join(src, MetadataFileName), v); err != nil {
				m.logger.Warn("failed to restore archive metadata", zap.String("archive", src), zap.Error(err))
			}
		}
	}

	if err := removeIfExists(m.fs, markerPath); err != nil {
		m.logger.Warn("failed to remove recovery marker after rollback", zap.String("marker", markerPath), zap.Error(err))
	}
	return cause
}

// RecoveryState classifies a leftover recovery marker.
type RecoveryState string

const (
	// StateCompletedMove means the directory reached active storage.
	StateCompletedMove RecoveryState = "completed-move"
	// StateNotMoved means the directory is still archived.
	StateNotMoved RecoveryState = "not-moved"
	// StateConflict means both the archive and the target exist.
	StateConflict RecoveryState = "conflict"
	// StateLost means neither the archive nor the target exists.
	StateLost RecoveryState = "lost"
)

// InterruptedRecovery is a marker left behind by a recovery that did not
// finish.
type InterruptedRecovery struct {
	MarkerName string                        `json:"marker_name"`
	Path       string                        `json:"path"`
	Target     string                        `json:"target"`
	Marker     option.Option[RecoveryMarker] `json:"marker"`
	State      RecoveryState                 `json:"state"`
}

// CheckInterruptedRecoveries scans active storage for recovery markers.
func (m *Manager) CheckInterruptedRecoveries() ([]InterruptedRecovery, error) {
	entries, err := m.fs.ReadDir(m.activeDir)
	if err != nil {
		if m.fs.Exists(m.activeDir) {
			return nil, fmt.Errorf("%w: failed to read session directory: %v", session.ErrFilesystem, err)
		}
		return []InterruptedRecovery{}, nil
	}

	out := []InterruptedRecovery{}
	for _, entry := range entries {
		if entry.IsDir() || !IsMarkerFileName(entry.Name()) {
			continue
		}
		ir, err := m.inspectMarker(entry.Name())
		if err != nil {
			m.logger.Warn("skipping invalid recovery marker", zap.String("marker", entry.Name()), zap.Error(err))
			continue
		}
		out = append(out, *ir)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].MarkerName < out[j].MarkerName })
	return out, nil
}

func (m *Manager) inspectMarker(markerName string) (*InterruptedRecovery, error) {
	target, err := TargetFromMarkerName(markerName)
	if err != nil {
		return nil, err
	}

	ir := &InterruptedRecovery{
		MarkerName: markerName,
		Path:       filepath.Join(m.activeDir, markerName),
		Target:     target,
		Marker:     option.None[RecoveryMarker](),
	}

	archiveExists := false
	marker, err := readMarker(m.fs, ir.Path)
	if err != nil {
		m.logger.Warn("unreadable recovery marker", zap.String("marker", markerName), zap.Error(err))
	} else {
		ir.Marker = option.Some(marker)
		archiveExists = marker.ArchivedDir != "" && m.fs.IsDir(marker.ArchivedDir)
	}
	targetExists := m.fs.IsDir(filepath.Join(m.activeDir, target))

	switch {
	case targetExists && !archiveExists:
		ir.State = StateCompletedMove
	case !targetExists && archiveExists:
		ir.State = StateNotMoved
	case targetExists && archiveExists:
		ir.State = StateConflict
	default:
		ir.State = StateLost
	}
	return ir, nil
}

// DiscardInterruptedRecovery deletes a marker whatever its state. Session and
// archive directories are left untouched.
func (m *Manager) DiscardInterruptedRecovery(markerName string) (*InterruptedRecovery, error) {
	ir, err := m.lookupMarker(markerName)
	if err != nil {
		return nil, err
	}

	if err := m.fs.Remove(ir.Path); err != nil {
		return ir, fmt.Errorf("%w: failed to remove recovery marker: %v", session.ErrFilesystem, err)
	}
	m.logger.Warn("discarded interrupted recovery",
		zap.String("marker", markerName), zap.String("state", string(ir.State)))
	return ir, nil
}

func (m *Manager) lookupMarker(markerName string) (*InterruptedRecovery, error) {
	if _, err := TargetFromMarkerName(markerName); err != nil {
		return nil, err
	}
	if !m.fs.Exists(filepath.Join(m.activeDir, markerName)) {
		return nil, fmt.Errorf("%w: recovery marker %q", session.ErrNotFound, markerName)
	}
	return m.inspectMarker(markerName)
}

// CleanupInterruptedRecovery reconciles one marker. A completed move is
// finished (stale metadata dropped) and a move that never happened is
// abandoned; either way the marker is deleted. Conflicting or lost
// recoveries keep their marker and return ErrNeedsRepair; see
// DiscardInterruptedRecovery.
func (m *Manager) CleanupInterruptedRecovery(markerName string) (*InterruptedRecovery, error) {
	ir, err := m.lookupMarker(markerName)
	if err != nil {
		return nil, err
	}

	switch ir.State {
	case StateCompletedMove:
		meta := filepath.Join(m.activeDir, ir.Target, MetadataFileName)
		if err := removeIfExists(m.fs, meta); err != nil {
			return ir, fmt.Errorf("%w: failed to remove stale archive metadata: %v", session.ErrFilesystem, err)
		}
	case StateNotMoved:
	default:
		return ir, fmt.Errorf("%w: marker %s is in state %s", ErrNeedsRepair, markerName, ir.State)
	}

	if err := m.fs.Remove(ir.Path); err != nil {
		return ir, fmt.Errorf("%w: failed to remove recovery marker: %v", session.ErrFilesystem, err)
	}
	m.logger.Info("reconciled interrupted recovery",
		zap.String("marker", markerName), zap.String("state", string(ir.State)))
	return ir, nil
}
