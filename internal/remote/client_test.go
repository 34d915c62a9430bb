package remote

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Assile/FTP-backup/internal/testutils"
)

func TestDialAndList(t *testing.T) {
	root := testutils.WriteTree(t, t.TempDir(), map[string][]byte{
		"top.txt":        []byte("top"),
		"nested/low.bin": testutils.GenerateData(10),
	})
	srv := testutils.StartFTPServer(t, root)

	client, err := Dial(context.Background(), srv.Addr, testutils.FTPUser, testutils.FTPPassword, Options{Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Quit()

	for _, mode := range []string{ListingDetailed, ListingPaired} {
		lister, err := NewLister(mode, client)
		if err != nil {
			t.Fatalf("NewLister: %v", err)
		}

		entries, err := lister.ListDir("nested")
		if err != nil {
			t.Fatalf("%s: ListDir: %v", mode, err)
		}
		if len(entries) != 1 {
			t.Fatalf("%s: expected 1 entry, got %+v", mode, entries)
		}
		if entries[0] != (Entry{Name: "low.bin", Kind: KindFile, Size: 10}) {
			t.Errorf("%s: unexpected entry %+v", mode, entries[0])
		}
	}
}

func TestDialRejectedLogin(t *testing.T) {
	srv := testutils.StartFTPServer(t, t.TempDir())

	_, err := Dial(context.Background(), srv.Addr, testutils.FTPUser, "wrong", Options{Timeout: 5 * time.Second})

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %v", err)
	}
	if connErr.Op != "login" {
		t.Errorf("expected login failure, got %q", connErr.Op)
	}
}

func TestDialUnreachable(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, "u", "p", Options{Timeout: time.Second})

	var connErr *ConnectionError
	if !errors.As(err, &connErr) || connErr.Op != "dial" {
		t.Fatalf("expected dial *ConnectionError, got %v", err)
	}
}

func TestDialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Dial(ctx, "127.0.0.1:21", "u", "p", DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
