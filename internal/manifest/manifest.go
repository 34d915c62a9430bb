// Package manifest holds the remote paths discovered by a walk and the
// sorted manifest the downloader consumes.
package manifest

import (
	"slices"
	"strconv"
	"strings"
)

// RemotePath is a path relative to the directory a walk started in, stored
// as its segments. The zero value is the start directory itself.
type RemotePath struct {
	segments []string
}

// NewRemotePath builds a RemotePath from segments. Empty segments are dropped.
func NewRemotePath(segments ...string) RemotePath {
	var p RemotePath
	for _, s := range segments {
		if s != "" {
			p.segments = append(p.segments, s)
		}
	}
	return p
}

// ParseRemotePath splits a slash separated path into a RemotePath.
func ParseRemotePath(s string) RemotePath {
	return NewRemotePath(strings.Split(s, "/")...)
}

// Join returns a new path with name appended. p is not modified.
func (p RemotePath) Join(name string) RemotePath {
	return NewRemotePath(append(slices.Clone(p.segments), name)...)
}

// Segments returns a copy of the path segments.
func (p RemotePath) Segments() []string {
	return slices.Clone(p.segments)
}

// Name returns the last segment, or "" for the start directory.
func (p RemotePath) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// IsRoot reports whether p is the start directory.
func (p RemotePath) IsRoot() bool {
	return len(p.segments) == 0
}

// String joins the segments with "/". This is the form sent to the server.
func (p RemotePath) String() string {
	return strings.Join(p.segments, "/")
}

// Compare orders paths lexicographically by segment. A path sorts before
// any longer path it is a prefix of.
func (p RemotePath) Compare(other RemotePath) int {
	return slices.Compare(p.segments, other.segments)
}

// Equal reports whether p and other name the same path.
func (p RemotePath) Equal(other RemotePath) bool {
	return slices.Equal(p.segments, other.segments)
}

// Manifest is the sorted, immutable list of files to download in one run.
type Manifest struct {
	paths []RemotePath
}

// New returns a manifest holding a sorted copy of paths.
func New(paths []RemotePath) Manifest {
	sorted := slices.Clone(paths)
	slices.SortStableFunc(sorted, RemotePath.Compare)
	return Manifest{paths: sorted}
}

// Len returns the number of files.
func (m Manifest) Len() int {
	return len(m.paths)
}

// At returns the i-th path (0-based).
func (m Manifest) At(i int) RemotePath {
	return m.paths[i]
}

// Paths returns a copy of the sorted paths.
func (m Manifest) Paths() []RemotePath {
	return slices.Clone(m.paths)
}

// IndexWidth is the number of digits needed to print any 1-based index.
func (m Manifest) IndexWidth() int {
	return len(strconv.Itoa(len(m.paths)))
}

// LongestPath is the length of the longest path string. It is 0 for an
// empty manifest.
func (m Manifest) LongestPath() int {
	longest := 0
	for _, p := range m.paths {
		longest = max(longest, len(p.String()))
	}
	return longest
}
