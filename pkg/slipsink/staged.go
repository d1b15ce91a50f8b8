package slipsink

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Staged is a document held in a temporary file until it has been delivered.
// Callers must call Release once delivery is over.
type Staged struct {
	fs          afero.Fs
	path        string
	name        string
	contentType string
	size        int64

	mu       sync.Mutex
	released bool
}

// Stage writes body to a new temporary file under dir.
func Stage(fs afero.Fs, dir, name, contentType string, body []byte) (*Staged, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("slipsink: failed to create temp dir %s: %w", dir, err)
	}

	f, err := afero.TempFile(fs, dir, "slip-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("slipsink: failed to create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(body); err != nil {
		f.Close()
		_ = fs.Remove(path)
		return nil, fmt.Errorf("slipsink: failed to stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(path)
		return nil, fmt.Errorf("slipsink: failed to stage %s: %w", name, err)
	}

	return &Staged{
		fs:          fs,
		path:        path,
		name:        name,
		contentType: contentType,
		size:        int64(len(body)),
	}, nil
}

// Name returns the filename the document is delivered under
func (s *Staged) Name() string { return s.name }

// ContentType returns the document media type
func (s *Staged) ContentType() string { return s.contentType }

// Size returns the document length in bytes
func (s *Staged) Size() int64 { return s.size }

// Path returns the temporary file location
func (s *Staged) Path() string { return s.path }

// Open opens the staged file for reading
func (s *Staged) Open() (afero.File, error) {
	s.mu.Lock()
	released := s.released
	s.mu.Unlock()
	if released {
		return nil, errors.New("slipsink: staged document already released")
	}
	f, err := s.fs.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("slipsink: failed to open staged %s: %w", s.name, err)
	}
	return f, nil
}

// Release removes the temporary file. It is safe to call more than once.
func (s *Staged) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("slipsink: failed to release %s: %w", s.path, err)
	}
	return nil
}

// Released reports whether Release has run
func (s *Staged) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
