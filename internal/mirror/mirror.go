// Package mirror runs a complete backup: it resolves the destination,
// discovers the remote tree and downloads every file into it.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Assile/FTP-backup/internal/downloader"
	"github.com/Assile/FTP-backup/internal/manifest"
	"github.com/Assile/FTP-backup/internal/progress"
	"github.com/Assile/FTP-backup/internal/remote"
	"github.com/Assile/FTP-backup/internal/storage"
	"github.com/Assile/FTP-backup/internal/walker"
)

// TimestampFormat names the subdirectory of a timestamped run.
const TimestampFormat = "2006-01-02 15.04.05"

// DialFunc opens a logged in connection.
type DialFunc func(ctx context.Context) (remote.Conn, error)

// Options configures a run.
type Options struct {
	// Target is a local directory or a bucket URL. Required.
	Target string

	// Timestamp places the files in a subdirectory (or key prefix) named
	// after the start time of the run.
	Timestamp bool

	// Listing selects the directory listing strategy, see remote.NewLister.
	Listing string

	// Dial opens the FTP connection. Required.
	Dial DialFunc

	// Reporter prints progress lines.
	// Default: stdout
	Reporter *progress.Reporter

	// Logger receives debug output.
	// Default: discard
	Logger *slog.Logger

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// Result describes a completed run.
type Result struct {
	Destination string
	Files       int
	Bytes       int64
	Elapsed     time.Duration
}

// ErrNoDial is returned when Options.Dial is nil.
var ErrNoDial = errors.New("mirror: dial function is required")

// Subdirectory returns the name of the timestamped subdirectory for a run
// started at now, in local time. It returns "" when timestamped is false.
func Subdirectory(timestamped bool, now time.Time) string {
	if !timestamped {
		return ""
	}
	return now.Local().Format(TimestampFormat)
}

// Run mirrors the remote tree below the connection's initial working
// directory into opts.Target. Symbolic links to files are stored as copies
// of their target. The connection is closed before Run returns, whatever the
// outcome.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Dial == nil {
		return nil, ErrNoDial
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Reporter == nil {
		opts.Reporter = progress.NewReporter(progress.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := opts.Now()

	conn, err := opts.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			opts.Logger.Debug("quit failed", "error", err)
		}
	}()

	lister, err := remote.NewLister(opts.Listing, conn)
	if err != nil {
		return nil, err
	}

	// The destination is created only after a successful login.
	sink, err := storage.Open(ctx, opts.Target, Subdirectory(opts.Timestamp, start))
	if err != nil {
		return nil, fmt.Errorf("open destination: %w", err)
	}
	defer sink.Close()

	result := &Result{Destination: sink.Location()}
	opts.Logger.Debug("destination ready", "location", result.Destination)

	paths, err := walker.Walk(ctx, lister, manifest.RemotePath{}, walker.Options{
		OnFound: func(n int, p manifest.RemotePath) {
			opts.Reporter.Found(n, p.String())
		},
		Size:   conn.Size,
		Logger: opts.Logger,
	})
	if err != nil {
		return result, err
	}

	stats, err := downloader.DownloadAll(ctx, conn, manifest.New(paths), sink, downloader.Options{
		Reporter: opts.Reporter,
		Now:      opts.Now,
	})
	result.Files = stats.Files
	result.Bytes = stats.Bytes
	if err != nil {
		return result, err
	}

	result.Elapsed = opts.Now().Sub(start)
	opts.Reporter.TotalTime(result.Elapsed)

	return result, nil
}
