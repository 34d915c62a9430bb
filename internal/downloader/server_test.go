package downloader

import (
	"bytes"
	"context"
	"testing"

	"github.com/Assile/FTP-backup/internal/manifest"
	"github.com/Assile/FTP-backup/internal/progress"
	"github.com/Assile/FTP-backup/internal/remote"
	"github.com/Assile/FTP-backup/internal/storage"
	"github.com/Assile/FTP-backup/internal/testutils"
	"github.com/Assile/FTP-backup/internal/walker"
)

func TestDownloadFromServer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping server test in short mode")
	}

	files := map[string][]byte{
		"index.html":          []byte("<html></html>"),
		"empty":               {},
		"assets/app.js":       testutils.GenerateData(5000),
		"assets/img/logo.png": testutils.GenerateData(70000),
	}
	srv := testutils.StartFTPServer(t, testutils.WriteTree(t, t.TempDir(), files))

	ctx := context.Background()
	conn, err := remote.Dial(ctx, srv.Addr, testutils.FTPUser, testutils.FTPPassword, remote.DefaultOptions())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Quit()

	paths, err := walker.Walk(ctx, remote.DetailedLister{Conn: conn}, manifest.RemotePath{}, walker.Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	root := t.TempDir()
	sink, err := storage.NewLocalSink(root)
	if err != nil {
		t.Fatal(err)
	}

	stats, err := DownloadAll(ctx, conn, manifest.New(paths), sink, Options{
		Reporter: progress.NewReporter(progress.Options{Output: &bytes.Buffer{}}),
	})
	if err != nil {
		t.Fatalf("DownloadAll: %v", err)
	}
	if stats.Files != len(files) {
		t.Errorf("expected %d files, got %d", len(files), stats.Files)
	}

	got, err := testutils.ReadTree(root)
	if err != nil {
		t.Fatal(err)
	}
	for name, data := range files {
		if !bytes.Equal(got[name], data) {
			t.Errorf("%s: content mismatch (%d bytes, want %d)", name, len(got[name]), len(data))
		}
	}
}
