package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/d-kuro/hyprsession/internal/session"
	"github.com/d-kuro/hyprsession/pkg/clock"
	"github.com/d-kuro/hyprsession/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInjected = errors.New("injected failure")

// faultyFS wraps the real filesystem and fails selected calls.
type faultyFS struct {
	filesystem.FileSystemInterface
	renameErr    func(oldpath, newpath string) error
	writeErr     func(name string) error
	removeErr    func(name string) error
	removeAllErr func(path string) error
}

func newFaultyFS() *faultyFS {
	return &faultyFS{FileSystemInterface: filesystem.NewStandardFileSystem()}
}

func (f *faultyFS) Rename(oldpath, newpath string) error {
	if f.renameErr != nil {
		if err := f.renameErr(oldpath, newpath); err != nil {
			return err
		}
	}
	return f.FileSystemInterface.Rename(oldpath, newpath)
}

func (f *faultyFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if f.writeErr != nil {
		if err := f.writeErr(name); err != nil {
			return err
		}
	}
	return f.FileSystemInterface.WriteFile(name, data, perm)
}

func (f *faultyFS) Remove(name string) error {
	if f.removeErr != nil {
		if err := f.removeErr(name); err != nil {
			return err
		}
	}
	return f.FileSystemInterface.Remove(name)
}

func (f *faultyFS) RemoveAll(path string) error {
	if f.removeAllErr != nil {
		if err := f.removeAllErr(path); err != nil {
			return err
		}
	}
	return f.FileSystemInterface.RemoveAll(path)
}

type env struct {
	active  string
	archive string
	clock   *clock.Fake
	fs      *faultyFS
}

func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	return &env{
		active:  filepath.Join(root, "sessions"),
		archive: filepath.Join(root, "archived"),
		clock:   clock.NewFake(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)),
		fs:      newFaultyFS(),
	}
}

func (e *env) manager(opts Options) *Manager {
	return NewManagerWithFS(e.active, e.archive, opts, e.fs, e.clock, nil)
}

func (e *env) saveSession(t *testing.T, name string) {
	t.Helper()
	data := &session.SessionData{
		Timestamp: e.clock.Now(),
		Windows:   []session.WindowInfo{{Address: "0x1", Class: "kitty", LaunchCommand: "kitty"}},
		Groups:    session.NewGroupMapping(),
	}
	require.NoError(t, session.NewStore(e.active, nil).Save(name, data, false))
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestArchive(t *testing.T) {
	e := newEnv(t)
	e.saveSession(t, "work")

	res, err := e.manager(Options{}).Archive("work")
	require.NoError(t, err)

	assert.Equal(t, "work", res.OriginalName)
	assert.Equal(t, "work-20250304-050607", res.ArchivedName)
	assert.Equal(t, 1, res.FileCount)
	assert.NoDirExists(t, filepath.Join(e.active, "work"))
	assert.FileExists(t, filepath.Join(e.archive, res.ArchivedName, session.FileName))

	meta, err := readMetadata(e.fs, res.Path)
	require.NoError(t, err)
	v, ok := meta.Get()
	require.True(t, ok)
	assert.Equal(t, "work", v.OriginalName)
	assert.Equal(t, res.ArchivedName, v.ArchivedName)
	assert.Equal(t, ArchiveVersion, v.ArchiveVersion)
	assert.True(t, v.ArchiveTimestamp.Equal(e.clock.Now()))
}

func TestArchive_NameCollision(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	e.saveSession(t, "work")
	first, err := m.Archive("work")
	require.NoError(t, err)

	e.saveSession(t, "work")
	second, err := m.Archive("work")
	require.NoError(t, err)

	assert.Equal(t, "work-20250304-050607", first.ArchivedName)
	assert.Equal(t, "work-20250304-050607-1", second.ArchivedName)
}

func TestArchive_Errors(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(e.active, "empty"), 0755))
	m := e.manager(Options{})

	_, err := m.Archive("../../etc")
	assert.ErrorIs(t, err, session.ErrValidation)

	_, err = m.Archive("missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = m.Archive("empty")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.DirExists(t, filepath.Join(e.active, "empty"))
}

func TestArchive_MetadataFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	e.saveSession(t, "work")
	e.fs.writeErr = func(name string) error {
		if strings.Contains(name, MetadataFileName) {
			return errInjected
		}
		return nil
	}

	_, err := e.manager(Options{}).Archive("work")
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrFilesystem)

	assert.FileExists(t, filepath.Join(e.active, "work", session.FileName))
	assert.Empty(t, dirNames(t, e.archive))
}

func TestArchive_Retention(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{AutoCleanup: true, MaxArchives: 2})

	require.NoError(t, os.MkdirAll(filepath.Join(e.archive, "broken-20200101-000000"), 0755))

	var archived []string
	for _, name := range []string{"a", "b", "c", "d"} {
		e.saveSession(t, name)
		res, err := m.Archive(name)
		require.NoError(t, err)
		require.NoError(t, res.CleanupErr)
		archived = append(archived, res.ArchivedName)
		e.clock.Advance(time.Minute)

		list, err := m.ListArchived()
		require.NoError(t, err)
		valid := 0
		for _, a := range list {
			if !a.Corrupt {
				valid++
			}
		}
		assert.LessOrEqual(t, valid, 2)
	}

	assert.ElementsMatch(t, []string{archived[2], archived[3], "broken-20200101-000000"}, dirNames(t, e.archive))
}

func TestEnforceRetention_BestEffort(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	var archived []string
	for _, name := range []string{"a", "b", "c", "d"} {
		e.saveSession(t, name)
		res, err := m.Archive(name)
		require.NoError(t, err)
		archived = append(archived, res.ArchivedName)
		e.clock.Advance(time.Minute)
	}

	stuck := filepath.Join(e.archive, archived[0])
	e.fs.removeAllErr = func(path string) error {
		if path == stuck {
			return errInjected
		}
		return nil
	}

	m = e.manager(Options{AutoCleanup: true, MaxArchives: 1})
	evicted, err := m.EnforceRetention()
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrFilesystem)
	assert.Equal(t, []string{archived[1], archived[2]}, evicted)
	assert.ElementsMatch(t, []string{archived[0], archived[3]}, dirNames(t, e.archive))
}

func TestEnforceRetention_Disabled(t *testing.T) {
	e := newEnv(t)
	evicted, err := e.manager(Options{AutoCleanup: true}).EnforceRetention()
	assert.NoError(t, err)
	assert.Empty(t, evicted)
}

func TestListArchived(t *testing.T) {
	e := newEnv(t)
	m := e.manager(Options{})

	list, err := m.ListArchived()
	require.NoError(t, err)
	assert.Empty(t, list)

	e.saveSession(t, "old")
	_, err = m.Archive("old")
	require.NoError(t, err)
	e.clock.Advance(time.Hour)
	e.saveSession(t, "new")
	_, err = m.Archive("new")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(e.archive, "junk"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(e.archive, "junk", MetadataFileName), []byte("{"), 0644))

	list, err = m.ListArchived()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].OriginalName)
	assert.Equal(t, "old", list[1].OriginalName)
	assert.Equal(t, "junk", list[2].Name)
	assert.True(t, list[2].Corrupt)
}

func TestValidateArchivedName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{name: "work-20250304-050607"},
		{name: "my-long-name-20250304-050607-3"},
		{name: "imported"},
		{name: "../work-20250304-050607", wantErr: true},
		{name: "..-20250304-050607", wantErr: true},
		{name: "..", wantErr: true},
		{name: "", wantErr: true},
		{name: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateArchivedName(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, session.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
