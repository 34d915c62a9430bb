package manifest

import (
	"testing"
)

func TestRemotePathJoinDoesNotAlias(t *testing.T) {
	base := NewRemotePath("a", "b")
	left := base.Join("c")
	right := base.Join("d")

	if left.String() != "a/b/c" {
		t.Errorf("expected a/b/c, got %s", left)
	}
	if right.String() != "a/b/d" {
		t.Errorf("expected a/b/d, got %s", right)
	}
	if base.String() != "a/b" {
		t.Errorf("base modified: %s", base)
	}
}

func TestParseRemotePath(t *testing.T) {
	p := ParseRemotePath("/pub//files/x.bin")
	if got := p.Segments(); len(got) != 3 || got[2] != "x.bin" {
		t.Errorf("unexpected segments %v", got)
	}
	if p.Name() != "x.bin" {
		t.Errorf("expected name x.bin, got %s", p.Name())
	}
	if !ParseRemotePath("").IsRoot() {
		t.Error("expected empty path to be root")
	}
}

func TestManifestSortsBySegment(t *testing.T) {
	m := New([]RemotePath{
		ParseRemotePath("b.txt"),
		ParseRemotePath("a/z.txt"),
		ParseRemotePath("a-b/c.txt"),
		ParseRemotePath("a/b/c.txt"),
		ParseRemotePath("a"),
	})

	want := []string{"a", "a/b/c.txt", "a/z.txt", "a-b/c.txt", "b.txt"}
	if m.Len() != len(want) {
		t.Fatalf("expected %d paths, got %d", len(want), m.Len())
	}
	for i, w := range want {
		if got := m.At(i).String(); got != w {
			t.Errorf("position %d: got %s, want %s", i, got, w)
		}
	}
}

func TestManifestWidths(t *testing.T) {
	tests := []struct {
		name        string
		paths       []string
		wantIndex   int
		wantLongest int
	}{
		{name: "empty", paths: nil, wantIndex: 1, wantLongest: 0},
		{name: "single", paths: []string{"readme"}, wantIndex: 1, wantLongest: 6},
		{
			name:        "ten files",
			paths:       []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "dir/longest.bin"},
			wantIndex:   2,
			wantLongest: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var paths []RemotePath
			for _, p := range tt.paths {
				paths = append(paths, ParseRemotePath(p))
			}
			m := New(paths)
			if m.IndexWidth() != tt.wantIndex {
				t.Errorf("IndexWidth() = %d, want %d", m.IndexWidth(), tt.wantIndex)
			}
			if m.LongestPath() != tt.wantLongest {
				t.Errorf("LongestPath() = %d, want %d", m.LongestPath(), tt.wantLongest)
			}
		})
	}
}

func TestManifestIsACopy(t *testing.T) {
	paths := []RemotePath{ParseRemotePath("b"), ParseRemotePath("a")}
	m := New(paths)

	paths[0] = ParseRemotePath("zzz")
	if m.At(1).String() != "b" {
		t.Errorf("manifest changed with its input: %s", m.At(1))
	}
}
