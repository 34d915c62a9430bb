package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Assile/FTP-backup/internal/manifest"
	"github.com/Assile/FTP-backup/internal/progress"
	"github.com/Assile/FTP-backup/internal/remote"
	"github.com/Assile/FTP-backup/internal/storage"
)

// Options configures the downloader.
type Options struct {
	// Reporter prints the progress lines. Required.
	Reporter *progress.Reporter

	// Now returns the current time.
	// Default: time.Now
	Now func() time.Time
}

// Transfer steps reported in TransferError.Op.
const (
	OpType     = "type"
	OpSize     = "size"
	OpCreate   = "create"
	OpRetrieve = "retrieve"
	OpCommit   = "commit"
)

// TransferError is returned when a file cannot be transferred.
//
// Use errors.As to extract it and inspect Path and Op.
type TransferError struct {
	Path string // Remote path of the file, empty for OpType
	Op   string // Step that failed
	Err  error
}

func (e *TransferError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("transfer %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transfer %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// ErrNoReporter is returned when Options.Reporter is nil.
var ErrNoReporter = errors.New("downloader: reporter is required")

// Stats summarises a completed batch.
type Stats struct {
	Files int
	Bytes int64
}

// DownloadAll fetches every file of m into sink, stopping at the first
// failure. ctx is checked between files; an interrupted batch returns
// ctx.Err() and leaves the files already committed in place.
func DownloadAll(ctx context.Context, conn remote.Conn, m manifest.Manifest, sink storage.Sink, opts Options) (Stats, error) {
	var stats Stats

	if opts.Reporter == nil {
		return stats, ErrNoReporter
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	if m.Len() == 0 {
		opts.Reporter.Message("No files to download")
		return stats, nil
	}

	if err := conn.Type("I"); err != nil {
		return stats, &TransferError{Op: OpType, Err: err}
	}

	opts.Reporter.StartBatch(m.IndexWidth(), m.LongestPath())
	batchStart := opts.Now()

	for i, p := range m.Paths() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n, err := downloadFile(ctx, conn, sink, p, i+1, m.Len(), batchStart, opts)
		if err != nil {
			return stats, err
		}
		stats.Files++
		stats.Bytes += n
	}

	return stats, nil
}

// downloadFile transfers a single file and prints its progress line.
func downloadFile(ctx context.Context, conn remote.Conn, sink storage.Sink, p manifest.RemotePath, index, total int, batchStart time.Time, opts Options) (int64, error) {
	name := p.String()

	size, err := conn.Size(name)
	if err != nil {
		return 0, &TransferError{Path: name, Op: OpSize, Err: err}
	}
	if _, _, err := progress.Humanize(size); err != nil {
		return 0, &TransferError{Path: name, Op: OpSize, Err: err}
	}

	rec := progress.TransferRecord{
		Index: index,
		Total: total,
		Path:  name,
		Size:  size,
	}
	opts.Reporter.FileStarted(rec)
	start := opts.Now()

	w, err := sink.Create(ctx, p)
	if err != nil {
		opts.Reporter.FileFailed()
		return 0, &TransferError{Path: name, Op: OpCreate, Err: err}
	}

	cw := &countingWriter{w: w}
	if err := conn.Retrieve(name, cw); err != nil {
		w.Abort()
		opts.Reporter.FileFailed()
		return 0, &TransferError{Path: name, Op: OpRetrieve, Err: err}
	}

	if err := w.Commit(); err != nil {
		w.Abort()
		opts.Reporter.FileFailed()
		return 0, &TransferError{Path: name, Op: OpCommit, Err: err}
	}

	now := opts.Now()
	rec.Elapsed = now.Sub(start)
	rec.TotalElapsed = now.Sub(batchStart)
	opts.Reporter.FileFinished(rec)

	return cw.n, nil
}

// countingWriter counts the bytes actually written to the sink.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
