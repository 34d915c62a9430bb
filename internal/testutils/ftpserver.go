package testutils

import (
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonzalop/ftp/server"
)

// Credentials accepted by StartFTPServer.
const (
	FTPUser     = "backup"
	FTPPassword = "secret"
)

// FTPServer is an FTP server running in-process for a single test.
type FTPServer struct {
	Addr string
	Root string
}

// StartFTPServer serves root over FTP on a random local port until the test
// ends. Only FTPUser/FTPPassword may log in, with read-only access.
func StartFTPServer(t *testing.T, root string) *FTPServer {
	t.Helper()

	driver, err := server.NewFSDriver(root,
		server.WithAuthenticator(func(user, pass, host string) (string, bool, error) {
			if user == FTPUser && pass == FTPPassword {
				return root, true, nil
			}
			return "", false, os.ErrPermission
		}),
	)
	if err != nil {
		t.Fatalf("create ftp driver: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()

	s, err := server.NewServer(addr,
		server.WithDriver(driver),
		server.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("create ftp server: %v", err)
	}

	go func() {
		if err := s.Serve(ln); err != nil && err != server.ErrServerClosed {
			t.Logf("ftp server stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		if err := s.Shutdown(); err != nil {
			t.Logf("ftp server shutdown: %v", err)
		}
	})

	return &FTPServer{Addr: addr, Root: root}
}

// WriteTree creates files under root, keyed by slash separated relative
// path, and returns root.
func WriteTree(t *testing.T, root string, files map[string][]byte) string {
	t.Helper()
	for name, data := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, data, 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	return root
}
