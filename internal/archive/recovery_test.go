package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTargetName(t *testing.T) {
	meta := func(original string) option.Option[ArchiveMetadata] {
		return option.Some(ArchiveMetadata{OriginalName: original})
	}

	tests := []struct {
		name     string
		archived string
		meta     option.Option[ArchiveMetadata]
		newName  option.Option[string]
		want     TargetName
		wantErr  bool
	}{
		{
			name:     "explicit name wins",
			archived: "work-20250304-050607",
			meta:     meta("work"),
			newName:  option.Some("play"),
			want:     TargetName{Name: "play", Source: SourceExplicit},
		},
		{
			name:     "invalid explicit name is an error",
			archived: "work-20250304-050607",
			newName:  option.Some("../escape"),
			wantErr:  true,
		},
		{
			name:     "metadata original name",
			archived: "work-20250304-050607",
			meta:     meta("work"),
			want:     TargetName{Name: "work", Source: SourceMetadata},
		},
		{
			name:     "unsafe metadata name is skipped",
			archived: "work-20250304-050607",
			meta:     meta("../../etc"),
			want:     TargetName{Name: "work", Source: SourceArchivedName},
		},
		{
			name:     "dashes in the original name survive extraction",
			archived: "my-work-project-20250304-050607-2",
			want:     TargetName{Name: "my-work-project", Source: SourceArchivedName},
		},
		{
			name:     "name without suffix falls back",
			archived: "imported",
			want:     TargetName{Name: FallbackName, Source: SourceFallback},
		},
		{
			name:     "unsafe extracted name falls back",
			archived: "..-20250304-050607",
			want:     TargetName{Name: FallbackName, Source: SourceFallback},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTargetName(tt.archived, tt.meta, tt.newName).Get()
			if tt.wantErr {
				assert.ErrorIs(t, err, session.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchiveRecoverScenario(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})
	e.saveSession(t, "work")

	archived, err := m.Archive("work")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(archived.ArchivedName, "work-"))

	rec, err := m.Recover(archived.ArchivedName, option.None[string]())
	require.NoError(t, err)
	assert.Equal(t, TargetName{Name: "work", Source: SourceMetadata}, rec.Target)
	assert.Equal(t, 1, rec.FileCount)
	assert.FileExists(t, filepath.Join(e.active, "work", session.FileName))
	assert.NoFileExists(t, filepath.Join(e.active, "work", MetadataFileName))
	assert.NoDirExists(t, archived.Path)
	assert.Equal(t, []string{"work"}, dirNames(t, e.active))

	loaded, err := session.NewStore(e.active, nil).Load("work")
	require.NoError(t, err)
	assert.Len(t, loaded.Windows, 1)

	archived, err = m.Archive("work")
	require.NoError(t, err)
	e.saveSession(t, "work")

	_, err = m.Recover(archived.ArchivedName, option.None[string]())
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrAlreadyExists)
	assert.FileExists(t, filepath.Join(archived.Path, MetadataFileName))
	assert.FileExists(t, filepath.Join(archived.Path, session.FileName))
	assert.Equal(t, []string{"work"}, dirNames(t, e.active))
}

func TestRecover_ExplicitName(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})
	e.saveSession(t, "work")
	archived, err := m.Archive("work")
	require.NoError(t, err)

	rec, err := m.Recover(archived.ArchivedName, option.Some("work-copy"))
	require.NoError(t, err)
	assert.Equal(t, SourceExplicit, rec.Target.Source)
	assert.DirExists(t, filepath.Join(e.active, "work-copy"))
}

func TestRecover_Errors(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	_, err := m.Recover("../sessions/x-20250304-050607", option.None[string]())
	assert.ErrorIs(t, err, session.ErrValidation)

	_, err = m.Recover("nothing-20250304-050607", option.None[string]())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRecover_MoveFailureLeavesArchive(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})
	e.saveSession(t, "work")
	archived, err := m.Archive("work")
	require.NoError(t, err)

	e.fs.renameErr = func(oldpath, newpath string) error {
		if oldpath == archived.Path {
			return errInjected
		}
		return nil
	}

	_, err = m.Recover(archived.ArchivedName, option.None[string]())
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrFilesystem)
	assert.FileExists(t, filepath.Join(archived.Path, MetadataFileName))
	assert.Empty(t, dirNames(t, e.active))
}

func TestRecover_RollbackAfterMove(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})
	e.saveSession(t, "work")
	archived, err := m.Archive("work")
	require.NoError(t, err)

	e.fs.removeErr = func(name string) error {
		if filepath.Base(name) == MetadataFileName {
			return errInjected
		}
		return nil
	}

	_, err = m.Recover(archived.ArchivedName, option.None[string]())
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrFilesystem)

	assert.FileExists(t, filepath.Join(archived.Path, session.FileName))
	assert.FileExists(t, filepath.Join(archived.Path, MetadataFileName))
	assert.Empty(t, dirNames(t, e.active))
}

func TestRecover_FailedRollbackKeepsMarker(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})
	e.saveSession(t, "work")
	archived, err := m.Archive("work")
	require.NoError(t, err)

	target := filepath.Join(e.active, "work")
	e.fs.removeErr = func(name string) error {
		if IsMarkerFileName(filepath.Base(name)) {
			return errInjected
		}
		return nil
	}
	e.fs.renameErr = func(oldpath, newpath string) error {
		if oldpath == target {
			return errInjected
		}
		return nil
	}

	_, err = m.Recover(archived.ArchivedName, option.None[string]())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollback failed")

	marker := MarkerFileName("work")
	assert.FileExists(t, filepath.Join(e.active, marker))

	// A later run with a healthy filesystem reconciles to fully active.
	healthy := NewManager(e.active, e.archive, Options{}, nil)
	found, err := healthy.CheckInterruptedRecoveries()
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, StateCompletedMove, found[0].State)
	assert.Equal(t, "work", found[0].Target)
	m0, ok := found[0].Marker.Get()
	require.True(t, ok)
	assert.Equal(t, archived.Path, m0.ArchivedDir)

	ir, err := healthy.CleanupInterruptedRecovery(marker)
	require.NoError(t, err)
	assert.Equal(t, StateCompletedMove, ir.State)
	assert.Equal(t, []string{"work"}, dirNames(t, e.active))
	assert.NoDirExists(t, archived.Path)
	assert.NoFileExists(t, filepath.Join(target, MetadataFileName))
}

func writeMarker(t *testing.T, dir, target, archivedDir string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := json.Marshal(RecoveryMarker{TargetName: target, ArchivedDir: archivedDir, RecoveryVersion: RecoveryVersion})
	require.NoError(t, err)
	name := MarkerFileName(target)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	return name
}

func TestCheckInterruptedRecoveries(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	found, err := m.CheckInterruptedRecoveries()
	require.NoError(t, err)
	assert.Empty(t, found)

	archivedA := filepath.Join(e.archive, "a-20250304-050607")
	archivedB := filepath.Join(e.archive, "b-20250304-050607")
	require.NoError(t, os.MkdirAll(archivedA, 0755))
	require.NoError(t, os.MkdirAll(archivedB, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.active, "b"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.active, "c"), 0755))

	writeMarker(t, e.active, "a", archivedA)
	writeMarker(t, e.active, "b", archivedB)
	writeMarker(t, e.active, "c", filepath.Join(e.archive, "c-20250304-050607"))
	writeMarker(t, e.active, "d", filepath.Join(e.archive, "d-20250304-050607"))
	require.NoError(t, os.WriteFile(filepath.Join(e.active, "notes.tmp"), nil, 0644))

	found, err = m.CheckInterruptedRecoveries()
	require.NoError(t, err)

	states := map[string]RecoveryState{}
	for _, ir := range found {
		states[ir.Target] = ir.State
	}
	assert.Equal(t, map[string]RecoveryState{
		"a": StateNotMoved,
		"b": StateConflict,
		"c": StateCompletedMove,
		"d": StateLost,
	}, states)
}

func TestCleanupInterruptedRecovery(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	archivedA := filepath.Join(e.archive, "a-20250304-050607")
	require.NoError(t, os.MkdirAll(archivedA, 0755))
	notMoved := writeMarker(t, e.active, "a", archivedA)

	ir, err := m.CleanupInterruptedRecovery(notMoved)
	require.NoError(t, err)
	assert.Equal(t, StateNotMoved, ir.State)
	assert.NoFileExists(t, filepath.Join(e.active, notMoved))
	assert.DirExists(t, archivedA)

	lost := writeMarker(t, e.active, "gone", filepath.Join(e.archive, "gone-20250304-050607"))
	ir, err = m.CleanupInterruptedRecovery(lost)
	assert.ErrorIs(t, err, ErrNeedsRepair)
	require.NotNil(t, ir)
	assert.Equal(t, StateLost, ir.State)
	assert.FileExists(t, filepath.Join(e.active, lost))

	_, err = m.CleanupInterruptedRecovery(MarkerFileName("absent"))
	assert.ErrorIs(t, err, session.ErrNotFound)

	for _, bad := range []string{"../" + notMoved, ".recovery-in-progress-a/b.tmp", "notes.tmp", MarkerFileName("..")} {
		_, err := m.CleanupInterruptedRecovery(bad)
		assert.ErrorIs(t, err, session.ErrValidation, bad)
	}
}

func TestDiscardInterruptedRecovery(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	lost := writeMarker(t, e.active, "gone", filepath.Join(e.archive, "gone-20250304-050607"))
	ir, err := m.DiscardInterruptedRecovery(lost)
	require.NoError(t, err)
	assert.Equal(t, StateLost, ir.State)
	assert.Equal(t, "gone", ir.Target)
	assert.NoFileExists(t, filepath.Join(e.active, lost))

	archivedB := filepath.Join(e.archive, "b-20250304-050607")
	require.NoError(t, os.MkdirAll(archivedB, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(e.active, "b"), 0755))
	conflict := writeMarker(t, e.active, "b", archivedB)

	ir, err = m.DiscardInterruptedRecovery(conflict)
	require.NoError(t, err)
	assert.Equal(t, StateConflict, ir.State)
	assert.NoFileExists(t, filepath.Join(e.active, conflict))
	assert.DirExists(t, archivedB)
	assert.DirExists(t, filepath.Join(e.active, "b"))

	found, err := m.CheckInterruptedRecoveries()
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = m.DiscardInterruptedRecovery(lost)
	assert.ErrorIs(t, err, session.ErrNotFound)
	_, err = m.DiscardInterruptedRecovery("notes.tmp")
	assert.ErrorIs(t, err, session.ErrValidation)
}
