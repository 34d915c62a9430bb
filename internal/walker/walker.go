// Package walker discovers every regular file below a remote directory.
package walker

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Assile/FTP-backup/internal/manifest"
	"github.com/Assile/FTP-backup/internal/remote"
)

// Options configures a walk.
type Options struct {
	// OnFound is called for each file as soon as it is discovered. n is the
	// number of files found so far, including this one.
	OnFound func(n int, path manifest.RemotePath)

	// Size, when set, is asked for the size of every symbolic link. A link
	// whose size cannot be read points at a directory (or nowhere) and is
	// skipped. Without Size every link is treated as a file.
	Size func(path string) (int64, error)

	// Logger receives entries that are skipped (directory links,
	// unparseable rows).
	// Default: discard
	Logger *slog.Logger
}

// Walk lists base and every directory below it and returns the paths of all
// files, symbolic links included, in listing order. Paths include base as their prefix.
//
// Every listing names its directory explicitly, so the working directory of
// the underlying connection is never changed, whether the walk succeeds or
// fails part way.
func Walk(ctx context.Context, lister remote.Lister, base manifest.RemotePath, opts Options) ([]manifest.RemotePath, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &walker{lister: lister, opts: opts}
	if err := w.walk(ctx, base); err != nil {
		return nil, err
	}
	return w.found, nil
}

// ListError is returned when a directory cannot be listed.
type ListError struct {
	Dir string
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("list %q: %v", e.Dir, e.Err)
}

func (e *ListError) Unwrap() error {
	return e.Err
}

type walker struct {
	lister remote.Lister
	opts   Options
	found  []manifest.RemotePath
}

func (w *walker) walk(ctx context.Context, dir manifest.RemotePath) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := w.lister.ListDir(dir.String())
	if err != nil {
		return &ListError{Dir: dir.String(), Err: err}
	}

	for _, e := range entries {
		if e.Name == "" || e.Name == "." || e.Name == ".." {
			continue
		}

		p := dir.Join(e.Name)
		switch e.Kind {
		case remote.KindDirectory:
			if err := w.walk(ctx, p); err != nil {
				return err
			}
		case remote.KindFile:
			w.add(p)
		case remote.KindLink:
			if w.opts.Size != nil {
				if _, err := w.opts.Size(p.String()); err != nil {
					w.opts.Logger.Debug("skipping link without size", "path", p.String(), "error", err)
					continue
				}
			}
			w.add(p)
		default:
			w.opts.Logger.Debug("skipping entry", "path", p.String(), "kind", e.Kind.String())
		}
	}

	return nil
}

func (w *walker) add(p manifest.RemotePath) {
	w.found = append(w.found, p)
	if w.opts.OnFound != nil {
		w.opts.OnFound(len(w.found), p)
	}
}
