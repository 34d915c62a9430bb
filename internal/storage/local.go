package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Assile/FTP-backup/internal/manifest"
)

const (
	dirPerm  = 0755
	filePerm = 0644

	// tempPattern has a fixed length so that any name the filesystem
	// accepts as a destination also fits as a temp file.
	tempPattern = ".ftp-backup-*.part"
)

// LocalSink writes files below a local directory.
type LocalSink struct {
	root string
}

// NewLocalSink creates root (and its parents) if needed. An existing
// directory is not an error.
func NewLocalSink(root string) (*LocalSink, error) {
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create destination %s: %w", root, err)
	}
	return &LocalSink{root: root}, nil
}

// Root returns the destination directory.
func (s *LocalSink) Root() string {
	return s.root
}

// Location implements Sink.
func (s *LocalSink) Location() string {
	return s.root
}

// Close implements Sink.
func (s *LocalSink) Close() error {
	return nil
}

// Path returns the local path p is written to.
func (s *LocalSink) Path(p manifest.RemotePath) (string, error) {
	if err := validatePath(p); err != nil {
		return "", err
	}
	return filepath.Join(append([]string{s.root}, p.Segments()...)...), nil
}

// Create implements Sink.
func (s *LocalSink) Create(ctx context.Context, p manifest.RemotePath) (Writer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dest, err := s.Path(p)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	return &localWriter{f: f, dest: dest}, nil
}

// localWriter writes to a temp file and renames it over dest on Commit.
type localWriter struct {
	f    *os.File
	dest string
	done bool
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWriter) Commit() error {
	if w.done {
		return fmt.Errorf("commit %s: writer already finished", w.dest)
	}

	if err := w.f.Chmod(filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", w.f.Name(), err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", w.f.Name(), err)
	}
	if err := os.Rename(w.f.Name(), w.dest); err != nil {
		return fmt.Errorf("rename into %s: %w", w.dest, err)
	}
	w.done = true
	return nil
}

func (w *localWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.f.Close()
	if err := os.Remove(w.f.Name()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", w.f.Name(), err)
	}
	return nil
}

func joinLocal(target, sub string) string {
	if sub == "" {
		return target
	}
	return filepath.Join(target, sub)
}
