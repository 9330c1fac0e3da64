package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/d-kuro/hyprsession/pkg/filesystem"
	"go.uber.org/zap"
)

// FileName is the canonical session file inside a session directory.
const FileName = "session.json"

// Summary describes one stored session without its windows.
type Summary struct {
	Name        string    `json:"name"`
	Path        string    `json:"path"`
	Timestamp   time.Time `json:"timestamp"`
	WindowCount int       `json:"window_count"`
	GroupCount  int       `json:"group_count"`
	Corrupt     bool      `json:"corrupt,omitempty"`
}

// Store provides persistent storage for active sessions.
type Store struct {
	dir    string
	fs     filesystem.FileSystemInterface
	logger *zap.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return NewStoreWithFS(dir, filesystem.NewStandardFileSystem(), logger)
}

// NewStoreWithFS creates a store with a custom filesystem.
func NewStoreWithFS(dir string, fs filesystem.FileSystemInterface, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, fs: fs, logger: logger}
}

// Dir returns the active storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the directory of the named session.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// FilePath returns the canonical session file of the named session.
func (s *Store) FilePath(name string) string {
	return filepath.Join(s.dir, name, FileName)
}

// Exists reports whether a session directory with this name exists.
func (s *Store) Exists(name string) bool {
	return s.fs.Exists(s.Path(name))
}

// Save persists data under name. An existing session is only replaced when
// overwrite is set.
func (s *Store) Save(name string, data *SessionData, overwrite bool) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if s.Exists(name) && !overwrite {
		return fmt.Errorf("%w: session %q", ErrAlreadyExists, name)
	}

	encoded, err := Encode(data)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.Path(name), 0755); err != nil {
		return fmt.Errorf("%w: failed to create session directory: %v", ErrFilesystem, err)
	}
	if err := filesystem.WriteFileAtomic(s.fs, s.FilePath(name), encoded, 0644); err != nil {
		return fmt.Errorf("%w: failed to write session file: %v", ErrFilesystem, err)
	}

	s.logger.Info("session saved",
		zap.String("session", name),
		zap.Int("windows", len(data.Windows)),
		zap.Int("groups", data.Groups.Len()))
	return nil
}

// Load reads the named session.
func (s *Store) Load(name string) (*SessionData, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	raw, err := s.fs.ReadFile(s.FilePath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: session %q", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read session file: %v", ErrFilesystem, err)
	}

	return Decode(raw)
}

// Delete removes the named session directory.
func (s *Store) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if !s.Exists(name) {
		return fmt.Errorf("%w: session %q", ErrNotFound, name)
	}
	if err := s.fs.RemoveAll(s.Path(name)); err != nil {
		return fmt.Errorf("%w: failed to delete session: %v", ErrFilesystem, err)
	}
	return nil
}

// List returns a summary of every stored session, newest first. Hidden
// entries and directories whose names fail validation are skipped; sessions
// whose file cannot be parsed are reported as corrupt.
func (s *Store) List() ([]Summary, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read session directory: %v", ErrFilesystem, err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || ValidateName(name) != nil {
			continue
		}

		summary := Summary{Name: name, Path: s.Path(name)}
		data, err := s.Load(name)
		if err != nil {
			s.logger.Debug("skipping unreadable session", zap.String("session", name), zap.Error(err))
			summary.Corrupt = true
			summaries = append(summaries, summary)
			continue
		}

		summary.Timestamp = data.Timestamp
		summary.WindowCount = len(data.Windows)
		summary.GroupCount = data.Groups.Len()
		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries, nil
}
