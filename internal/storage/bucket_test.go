package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/gcerrors"

	"github.com/Assile/FTP-backup/internal/manifest"
)

func TestBucketSinkWritesWithPrefix(t *testing.T) {
	ctx := context.Background()
	bkt, err := blob.OpenBucket(ctx, "mem://")
	if err != nil {
		t.Fatalf("open bucket: %v", err)
	}
	defer bkt.Close()

	s := NewBucketSink(bkt, "mem://", "2025-01-15 10.30.00")
	writeFile(t, s, "pub/readme.txt", []byte("hello"))
	writeFile(t, s, "empty.bin", nil)

	data, err := bkt.ReadAll(ctx, "2025-01-15 10.30.00/pub/readme.txt")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected content %q", data)
	}

	attrs, err := bkt.Attributes(ctx, "2025-01-15 10.30.00/empty.bin")
	if err != nil {
		t.Fatalf("Attributes: %v", err)
	}
	if attrs.Size != 0 {
		t.Errorf("expected empty object, got %d bytes", attrs.Size)
	}
}

func TestBucketSinkAbort(t *testing.T) {
	ctx := context.Background()
	s, err := OpenBucket(ctx, "mem://", "")
	if err != nil {
		t.Fatalf("OpenBucket: %v", err)
	}
	defer s.Close()

	w, err := s.Create(ctx, manifest.ParseRemotePath("partial.bin"))
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("half of it"))
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	_, err = s.Bucket().NewReader(ctx, "partial.bin", nil)
	if gcerrors.Code(err) != gcerrors.NotFound {
		t.Errorf("expected NotFound after abort, got %v", err)
	}
}

func TestBucketSinkOverwrites(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://", "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*BucketSink); !ok {
		t.Fatalf("expected *BucketSink, got %T", s)
	}

	writeFile(t, s, "f", []byte("first"))
	writeFile(t, s, "f", []byte("second"))

	r, err := s.(*BucketSink).Bucket().NewReader(ctx, "f", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "second" {
		t.Errorf("expected overwrite, got %q", data)
	}
}

func TestBucketSinkRejectsUnsafeNames(t *testing.T) {
	s, err := OpenBucket(context.Background(), "mem://", "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Create(context.Background(), manifest.NewRemotePath("a", ".."))
	if !errors.Is(err, ErrUnsafeName) {
		t.Errorf("expected ErrUnsafeName, got %v", err)
	}
}
