package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/Assile/FTP-backup/internal/manifest"
)

// ErrUnsafeName is returned for remote names that cannot be used as a path
// segment at the destination.
var ErrUnsafeName = errors.New("storage: unsafe path segment")

// Writer receives the content of one file.
type Writer interface {
	io.Writer

	// Commit makes the written data visible at the destination,
	// replacing any previous content.
	Commit() error

	// Abort discards the written data. It is safe to call after a failed
	// Commit.
	Abort() error
}

// Sink is a destination for downloaded files.
type Sink interface {
	// Create starts writing the file at p. Missing parent directories are
	// created; existing ones are reused.
	Create(ctx context.Context, p manifest.RemotePath) (Writer, error)

	// Location describes the destination for display.
	Location() string

	Close() error
}

// Open returns the sink for target. When sub is not empty the files go
// below it: a subdirectory for local targets, a key prefix for buckets.
func Open(ctx context.Context, target, sub string) (Sink, error) {
	if IsBucketURL(target) {
		return OpenBucket(ctx, target, sub)
	}
	return NewLocalSink(joinLocal(target, sub))
}

// IsBucketURL reports whether target names a blob bucket rather than a
// local directory. Single letter schemes are Windows drive letters.
func IsBucketURL(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return len(u.Scheme) > 1 && strings.Contains(target, "://")
}

// ValidateSegment checks that name can be used as one path element.
func ValidateSegment(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	return nil
}

func validatePath(p manifest.RemotePath) error {
	if p.IsRoot() {
		return fmt.Errorf("%w: empty path", ErrUnsafeName)
	}
	for _, s := range p.Segments() {
		if err := ValidateSegment(s); err != nil {
			return err
		}
	}
	return nil
}
