// Package testutils provides shared test infrastructure: an in-memory FTP
// connection, an in-process FTP server and, behind the integration build
// tag, a MinIO container.
package testutils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gonzalop/ftp"
)

// FakeConn is an in-memory FTP connection serving a fixed tree. It records
// every command it receives.
type FakeConn struct {
	mu sync.Mutex

	files map[string][]byte
	dirs  map[string]bool
	links map[string]string

	// ListErr fails LIST and NLST of the given directories.
	ListErr map[string]error

	// RetrieveErr fails RETR of the given files after half of the data
	// has been written.
	RetrieveErr map[string]error

	// NameListHook, when set, rewrites the NLST output of a directory.
	NameListHook func(dir string, names []string) []string

	// ChunkSize is the size of each write made by Retrieve.
	// Default: 4096
	ChunkSize int

	cwd    string
	calls  []string
	closed bool
}

// NewFakeConn returns a connection serving files, keyed by slash separated
// path. Parent directories are created implicitly.
func NewFakeConn(files map[string][]byte) *FakeConn {
	c := &FakeConn{
		files:       make(map[string][]byte),
		dirs:        map[string]bool{"": true},
		links:       make(map[string]string),
		ListErr:     make(map[string]error),
		RetrieveErr: make(map[string]error),
		ChunkSize:   4096,
		cwd:         "/",
	}
	for name, data := range files {
		c.AddFile(name, data)
	}
	return c
}

// AddFile adds a file and its parent directories.
func (c *FakeConn) AddFile(name string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[name] = data
	c.addParents(name)
}

// AddDir adds an empty directory.
func (c *FakeConn) AddDir(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirs[name] = true
	c.addParents(name)
}

// AddLink adds a symbolic link. A relative target is resolved against the
// link's directory; SIZE and RETR of the link serve the target file.
func (c *FakeConn) AddLink(name, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links[name] = target
	c.addParents(name)
}

func (c *FakeConn) addParents(name string) {
	for dir := path.Dir(name); dir != "." && dir != "/"; dir = path.Dir(dir) {
		c.dirs[dir] = true
	}
}

// Calls returns the commands received so far, e.g. "LIST a/b".
func (c *FakeConn) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.calls)
}

// CountCalls returns how many commands start with verb.
func (c *FakeConn) CountCalls(verb string) int {
	n := 0
	for _, call := range c.Calls() {
		if call == verb || strings.HasPrefix(call, verb+" ") {
			n++
		}
	}
	return n
}

// Closed reports whether Quit was called.
func (c *FakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// CurrentDir returns the working directory, which only ChangeDir moves.
func (c *FakeConn) CurrentDir() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("PWD", "")
	return c.cwd, nil
}

// ChangeDir changes the working directory.
func (c *FakeConn) ChangeDir(dir string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CWD", dir)
	c.cwd = path.Join(c.cwd, dir)
	return nil
}

func (c *FakeConn) record(verb, arg string) {
	if arg == "" {
		c.calls = append(c.calls, verb)
		return
	}
	c.calls = append(c.calls, verb+" "+arg)
}

// Type implements remote.Conn.
func (c *FakeConn) Type(transferType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("TYPE", transferType)
	return nil
}

// Size implements remote.Conn.
func (c *FakeConn) Size(name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("SIZE", name)
	data, ok := c.files[c.resolve(name)]
	if !ok {
		return 0, &ftp.ProtocolError{Command: "SIZE", Response: "550 No such file", Code: 550}
	}
	return int64(len(data)), nil
}

// List implements remote.Conn. Rows are returned in name order.
func (c *FakeConn) List(dir string) ([]*ftp.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("LIST", dir)
	if err := c.listErr(dir); err != nil {
		return nil, err
	}

	var entries []*ftp.Entry
	for _, name := range c.children(dir) {
		full := join(dir, name)
		e := &ftp.Entry{Name: name}
		switch {
		case c.dirs[full]:
			e.Type = "dir"
			e.Size = 4096
			e.Raw = fmt.Sprintf("drwxr-xr-x 1 owner group %d Jan 02 15:04 %s", e.Size, name)
		case c.links[full] != "":
			e.Type = "link"
			e.Target = c.links[full]
			e.Size = int64(len(e.Target))
			e.Raw = fmt.Sprintf("lrwxrwxrwx 1 owner group %d Jan 02 15:04 %s -> %s", e.Size, name, e.Target)
		default:
			e.Type = "file"
			e.Size = int64(len(c.files[full]))
			e.Raw = fmt.Sprintf("-rw-r--r-- 1 owner group %d Jan 02 15:04 %s", e.Size, name)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// NameList implements remote.Conn.
func (c *FakeConn) NameList(dir string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("NLST", dir)
	if err := c.listErr(dir); err != nil {
		return nil, err
	}

	names := c.children(dir)
	if c.NameListHook != nil {
		names = c.NameListHook(dir, names)
	}
	return names, nil
}

// Retrieve implements remote.Conn.
func (c *FakeConn) Retrieve(name string, w io.Writer) error {
	c.mu.Lock()
	c.record("RETR", name)
	data, ok := c.files[c.resolve(name)]
	failure := c.RetrieveErr[name]
	chunk := c.ChunkSize
	c.mu.Unlock()

	if !ok {
		return &ftp.ProtocolError{Command: "RETR", Response: "550 No such file", Code: 550}
	}
	if chunk <= 0 {
		chunk = 4096
	}

	if failure != nil {
		if _, err := w.Write(data[:len(data)/2]); err != nil {
			return err
		}
		return failure
	}

	for off := 0; off < len(data); off += chunk {
		end := min(off+chunk, len(data))
		if _, err := w.Write(data[off:end]); err != nil {
			return err
		}
	}
	return nil
}

// Quit implements remote.Conn.
func (c *FakeConn) Quit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("QUIT", "")
	if c.closed {
		return errors.New("fake: already closed")
	}
	c.closed = true
	return nil
}

// resolve follows a symbolic link to the path it points at.
func (c *FakeConn) resolve(name string) string {
	target, ok := c.links[name]
	if !ok {
		return name
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	resolved := path.Join(path.Dir(name), target)
	if resolved == "." {
		return ""
	}
	return resolved
}

func (c *FakeConn) listErr(dir string) error {
	if err, ok := c.ListErr[dir]; ok {
		return err
	}
	if !c.dirs[dir] {
		return &ftp.ProtocolError{Command: "LIST", Response: "550 No such directory", Code: 550}
	}
	return nil
}

// children returns the sorted names directly inside dir.
func (c *FakeConn) children(dir string) []string {
	seen := make(map[string]bool)
	collect := func(full string) {
		if full == "" {
			return
		}
		parent := path.Dir(full)
		if parent == "." {
			parent = ""
		}
		if parent == dir {
			seen[path.Base(full)] = true
		}
	}
	for name := range c.files {
		collect(name)
	}
	for name := range c.dirs {
		collect(name)
	}
	for name := range c.links {
		collect(name)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// GenerateData returns size bytes of a deterministic pattern.
func GenerateData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// ReadTree returns every regular file under root, keyed by slash separated
// relative path.
func ReadTree(root string) (map[string][]byte, error) {
	files := make(map[string][]byte)
	err := walkDir(root, "", files)
	return files, err
}

func walkDir(root, rel string, files map[string][]byte) error {
	entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	for _, e := range entries {
		name := join(rel, e.Name())
		if e.IsDir() {
			if err := walkDir(root, name, files); err != nil {
				return err
			}
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return err
		}
		files[name] = data
	}
	return nil
}
