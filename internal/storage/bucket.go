package storage

import (
	"context"
	"fmt"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/Assile/FTP-backup/internal/manifest"
)

// BucketSink writes files as objects of a blob bucket, keyed by their
// slash separated remote path.
type BucketSink struct {
	bucket   *blob.Bucket
	location string
}

// OpenBucket opens the bucket at bucketURL. A non-empty prefix is prepended
// to every key as a directory ("prefix/path/to/file").
func OpenBucket(ctx context.Context, bucketURL, prefix string) (*BucketSink, error) {
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	return NewBucketSink(bkt, bucketURL, prefix), nil
}

// NewBucketSink wraps an open bucket. The sink takes ownership of bkt.
func NewBucketSink(bkt *blob.Bucket, location, prefix string) *BucketSink {
	if prefix != "" {
		prefix = strings.TrimSuffix(prefix, "/") + "/"
		bkt = blob.PrefixedBucket(bkt, prefix)
		location = strings.TrimSuffix(location, "/") + " (" + prefix + ")"
	}
	return &BucketSink{bucket: bkt, location: location}
}

// Bucket returns the underlying bucket, including any prefix.
func (s *BucketSink) Bucket() *blob.Bucket {
	return s.bucket
}

// Location implements Sink.
func (s *BucketSink) Location() string {
	return s.location
}

// Close implements Sink.
func (s *BucketSink) Close() error {
	return s.bucket.Close()
}

// Create implements Sink.
func (s *BucketSink) Create(ctx context.Context, p manifest.RemotePath) (Writer, error) {
	if err := validatePath(p); err != nil {
		return nil, err
	}

	key := p.String()
	wctx, cancel := context.WithCancel(ctx)
	w, err := s.bucket.NewWriter(wctx, key, &blob.WriterOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create object %s (%s): %w", key, gcerrors.Code(err), err)
	}

	return &bucketWriter{w: w, cancel: cancel, key: key}, nil
}

// bucketWriter streams into a blob.Writer. Cancelling its context before
// Close aborts the upload.
type bucketWriter struct {
	w      *blob.Writer
	cancel context.CancelFunc
	key    string
	done   bool
}

func (w *bucketWriter) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

func (w *bucketWriter) Commit() error {
	if w.done {
		return fmt.Errorf("commit %s: writer already finished", w.key)
	}
	w.done = true
	defer w.cancel()

	if err := w.w.Close(); err != nil {
		return fmt.Errorf("commit object %s (%s): %w", w.key, gcerrors.Code(err), err)
	}
	return nil
}

func (w *bucketWriter) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	w.cancel()
	// Close after cancel discards the upload and reports the cancellation.
	_ = w.w.Close()
	return nil
}
