// Package archive moves sessions between active and archived storage.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/filesystem"
	"github.com/d-kuro/hyprsession/pkg/option"
)

const (
	// MetadataFileName is the hidden metadata file inside an archived session.
	MetadataFileName = ".archive-metadata.json"
	// ArchiveVersion is written to every new metadata file.
	ArchiveVersion = "1.0"
	// RecoveryVersion is written to every new recovery marker.
	RecoveryVersion = "1.0"

	markerPrefix = ".recovery-in-progress-"
	markerSuffix = ".tmp"

	timestampLayout = "20060102-150405"
)

// ArchiveMetadata records where an archived session came from.
type ArchiveMetadata struct {
	OriginalName     string    `json:"original_name"`
	ArchivedName     string    `json:"archived_name"`
	ArchiveTimestamp time.Time `json:"archive_timestamp"`
	FileCount        int       `json:"file_count"`
	ArchiveVersion   string    `json:"archive_version"`
}

// RecoveryMarker is written to active storage for the duration of a recovery.
// Finding one later means the recovering process died mid-operation.
type RecoveryMarker struct {
	TargetName        string    `json:"target_name"`
	ArchivedDir       string    `json:"archived_dir"`
	RecoveryTimestamp time.Time `json:"recovery_timestamp"`
	RecoveryVersion   string    `json:"recovery_version"`
	FileCount         int       `json:"file_count"`
}

// MarkerFileName returns the marker file name for a recovery into target.
func MarkerFileName(target string) string {
	return markerPrefix + target + markerSuffix
}

// IsMarkerFileName reports whether name looks like a recovery marker.
func IsMarkerFileName(name string) bool {
	return strings.HasPrefix(name, markerPrefix) && strings.HasSuffix(name, markerSuffix) &&
		len(name) > len(markerPrefix)+len(markerSuffix)
}

// TargetFromMarkerName extracts and validates the target session name encoded
// in a marker file name. Anything that is not a bare marker file name in the
// active directory is rejected.
func TargetFromMarkerName(name string) (string, error) {
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: marker name %q must not contain a path", session.ErrValidation, name)
	}
	if !IsMarkerFileName(name) {
		return "", fmt.Errorf("%w: %q is not a recovery marker", session.ErrValidation, name)
	}
	target := strings.TrimSuffix(strings.TrimPrefix(name, markerPrefix), markerSuffix)
	if err := session.ValidateName(target); err != nil {
		return "", err
	}
	return target, nil
}

func writeJSON(fs filesystem.FileSystemInterface, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return filesystem.WriteFileAtomic(fs, path, append(data, '\n'), 0644)
}

// readMetadata loads the metadata of the archived session at dir. A missing
// file yields None; an unreadable one yields an error.
func readMetadata(fs filesystem.FileSystemInterface, dir string) (option.Option[ArchiveMetadata], error) {
	raw, err := fs.ReadFile(filepath.Join(dir, MetadataFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return option.None[ArchiveMetadata](), nil
		}
		return option.None[ArchiveMetadata](), fmt.Errorf("failed to read archive metadata: %w", err)
	}

	var meta ArchiveMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return option.None[ArchiveMetadata](), fmt.Errorf("failed to parse archive metadata: %w", err)
	}
	return option.Some(meta), nil
}

func readMarker(fs filesystem.FileSystemInterface, path string) (RecoveryMarker, error) {
	var marker RecoveryMarker
	raw, err := fs.ReadFile(path)
	if err != nil {
		return marker, fmt.Errorf("failed to read recovery marker: %w", err)
	}
	if err := json.Unmarshal(raw, &marker); err != nil {
		return marker, fmt.Errorf("failed to parse recovery marker: %w", err)
	}
	return marker, nil
}

// removeIfExists removes path, treating a missing path as success.
func removeIfExists(fs filesystem.FileSystemInterface, path string) error {
	if err := fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
