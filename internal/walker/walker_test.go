package walker

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/Assile/FTP-backup/internal/manifest"
	"github.com/Assile/FTP-backup/internal/remote"
	"github.com/Assile/FTP-backup/internal/testutils"
)

func threeLevelTree() map[string][]byte {
	return map[string][]byte{
		"root.txt":             []byte("r"),
		"one/a.txt":            []byte("a"),
		"one/b.txt":            []byte("b"),
		"one/two/c.txt":        []byte("c"),
		"one/two/three/d.txt":  []byte("d"),
		"one/two/three/e.data": nil,
		"other/f.txt":          []byte("f"),
	}
}

func pathStrings(paths []manifest.RemotePath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.String()
	}
	return out
}

func TestWalkFindsEveryFile(t *testing.T) {
	files := threeLevelTree()

	for _, mode := range []string{remote.ListingDetailed, remote.ListingPaired} {
		t.Run(mode, func(t *testing.T) {
			conn := testutils.NewFakeConn(files)
			conn.AddDir("one/empty")
			conn.AddLink("one/link", "../root.txt")
			lister, err := remote.NewLister(mode, conn)
			if err != nil {
				t.Fatal(err)
			}

			paths, err := Walk(context.Background(), lister, manifest.RemotePath{}, Options{})
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}

			got := pathStrings(paths)
			slices.Sort(got)
			want := []string{"one/link"}
			for name := range files {
				want = append(want, name)
			}
			slices.Sort(want)

			if !slices.Equal(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestWalkLinks(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())
	conn.AddLink("latest", "one/two/c.txt")
	conn.AddLink("one/current", "two")
	conn.AddLink("dangling", "gone.txt")

	tests := []struct {
		name string
		size func(string) (int64, error)
		want []string
	}{
		{"without size check", nil, []string{"dangling", "latest", "one/current"}},
		{"with size check", conn.Size, []string{"latest"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths, err := Walk(context.Background(), remote.DetailedLister{Conn: conn}, manifest.RemotePath{}, Options{
				Size: tt.size,
			})
			if err != nil {
				t.Fatalf("Walk: %v", err)
			}

			var links []string
			for _, p := range pathStrings(paths) {
				if slices.Contains([]string{"latest", "one/current", "dangling"}, p) {
					links = append(links, p)
				}
			}
			slices.Sort(links)
			if !slices.Equal(links, tt.want) {
				t.Errorf("got links %v, want %v", links, tt.want)
			}
		})
	}
}

func TestWalkFollowsListingOrder(t *testing.T) {
	conn := testutils.NewFakeConn(map[string][]byte{"b": nil, "a": nil, "c": nil})
	lister := reversedLister{remote.DetailedLister{Conn: conn}}

	paths, err := Walk(context.Background(), lister, manifest.RemotePath{}, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := pathStrings(paths); !slices.Equal(got, []string{"c", "b", "a"}) {
		t.Errorf("expected listing order, got %v", got)
	}
}

type reversedLister struct {
	remote.Lister
}

func (l reversedLister) ListDir(dir string) ([]remote.Entry, error) {
	entries, err := l.Lister.ListDir(dir)
	slices.Reverse(entries)
	return entries, err
}

func TestWalkReportsRunningCount(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())

	var lines []string
	opts := Options{OnFound: func(n int, p manifest.RemotePath) {
		lines = append(lines, p.String())
		if n != len(lines) {
			t.Errorf("count %d reported as file number %d", n, len(lines))
		}
	}}

	paths, err := Walk(context.Background(), remote.DetailedLister{Conn: conn}, manifest.RemotePath{}, opts)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if !slices.Equal(lines, pathStrings(paths)) {
		t.Errorf("reported %v, returned %v", lines, pathStrings(paths))
	}
}

func TestWalkFromBase(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())

	paths, err := Walk(context.Background(), remote.DetailedLister{Conn: conn}, manifest.ParseRemotePath("one/two"), Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	got := pathStrings(paths)
	slices.Sort(got)
	want := []string{"one/two/c.txt", "one/two/three/d.txt", "one/two/three/e.data"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWalkEmptyDirectory(t *testing.T) {
	conn := testutils.NewFakeConn(nil)
	conn.AddDir("nothing")

	called := false
	paths, err := Walk(context.Background(), remote.PairedLister{Conn: conn}, manifest.RemotePath{}, Options{
		OnFound: func(int, manifest.RemotePath) { called = true },
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(paths) != 0 || called {
		t.Errorf("expected nothing, got %v", paths)
	}
}

func TestWalkErrorKeepsWorkingDirectory(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())
	boom := errors.New("connection reset")
	conn.ListErr["one/two/three"] = boom

	before, _ := conn.CurrentDir()
	_, err := Walk(context.Background(), remote.DetailedLister{Conn: conn}, manifest.RemotePath{}, Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if !strings.Contains(err.Error(), `"one/two/three"`) {
		t.Errorf("error should name the directory: %v", err)
	}
	var le *ListError
	if !errors.As(err, &le) || le.Dir != "one/two/three" {
		t.Errorf("expected ListError for one/two/three, got %v", err)
	}

	after, _ := conn.CurrentDir()
	if before != after {
		t.Errorf("working directory moved from %s to %s", before, after)
	}
	if n := conn.CountCalls("CWD"); n != 0 {
		t.Errorf("expected no CWD commands, got %d", n)
	}
}

func TestWalkListingMismatch(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())
	conn.NameListHook = func(dir string, names []string) []string {
		if dir == "other" {
			return nil
		}
		return names
	}

	_, err := Walk(context.Background(), remote.PairedLister{Conn: conn}, manifest.RemotePath{}, Options{})
	if !errors.Is(err, remote.ErrListingMismatch) {
		t.Fatalf("expected ErrListingMismatch, got %v", err)
	}
}

func TestWalkCancelled(t *testing.T) {
	conn := testutils.NewFakeConn(threeLevelTree())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Walk(ctx, remote.DetailedLister{Conn: conn}, manifest.RemotePath{}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if n := conn.CountCalls("LIST"); n != 0 {
		t.Errorf("expected no listings after cancel, got %d", n)
	}
}
