package remote

import (
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Listing modes accepted by NewLister.
const (
	ListingDetailed = "detailed"
	ListingPaired   = "paired"
)

// Common errors.
var (
	ErrListingMismatch = errors.New("remote: name and detailed listings differ")
	ErrUnknownListing  = errors.New("remote: unknown listing mode")
)

// Kind classifies a directory entry.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
	KindLink
	KindUnknown // a LIST row no parser understood, such as "total 12"
)

func (k Kind) String() string {
	switch k {
	case KindDirectory:
		return "dir"
	case KindLink:
		return "link"
	case KindUnknown:
		return "unknown"
	default:
		return "file"
	}
}

// Entry is one row of a remote directory listing.
type Entry struct {
	Name string
	Kind Kind
	Size int64 // bytes; meaningful for files only
}

// Lister lists a single remote directory. dir is relative to the working
// directory the connection started in; "" is that directory.
type Lister interface {
	ListDir(dir string) ([]Entry, error)
}

// ListingMismatchError reports a directory whose NLST and LIST outputs have
// different lengths.
type ListingMismatchError struct {
	Dir     string
	Names   int
	Details int
}

func (e *ListingMismatchError) Error() string {
	return fmt.Sprintf("listing mismatch in %q: %d names, %d detailed rows", e.Dir, e.Names, e.Details)
}

func (e *ListingMismatchError) Unwrap() error {
	return ErrListingMismatch
}

// NewLister returns the lister for a listing mode.
func NewLister(mode string, conn Conn) (Lister, error) {
	switch mode {
	case ListingDetailed, "":
		return DetailedLister{Conn: conn}, nil
	case ListingPaired:
		return PairedLister{Conn: conn}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownListing, mode)
	}
}

// DetailedLister lists a directory with a single LIST command.
type DetailedLister struct {
	Conn Conn
}

// ListDir implements Lister.
func (l DetailedLister) ListDir(dir string) ([]Entry, error) {
	rows, err := l.Conn.List(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		e := Entry{Name: row.Name, Size: row.Size}
		switch row.Type {
		case "dir":
			e.Kind = KindDirectory
		case "link":
			e.Kind = KindLink
		case "file":
			e.Kind = KindFile
		default:
			e.Kind = KindUnknown
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// PairedLister lists a directory with NLST and LIST and zips the two by
// position.
type PairedLister struct {
	Conn Conn
}

// ListDir implements Lister.
func (l PairedLister) ListDir(dir string) ([]Entry, error) {
	names, err := l.Conn.NameList(dir)
	if err != nil {
		return nil, fmt.Errorf("name list: %w", err)
	}
	rows, err := l.Conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}

	if len(names) != len(rows) {
		return nil, &ListingMismatchError{Dir: dir, Names: len(names), Details: len(rows)}
	}

	entries := make([]Entry, 0, len(names))
	for i, name := range names {
		fields := strings.Fields(rows[i].Raw)
		if len(fields) < 5 {
			return nil, fmt.Errorf("malformed listing row %q", rows[i].Raw)
		}

		size, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse size of %q: %w", name, err)
		}

		e := Entry{
			// Some servers answer NLST <dir> with dir/name.
			Name: path.Base(name),
			Size: size,
		}
		switch {
		case strings.HasPrefix(fields[0], "d"):
			e.Kind = KindDirectory
		case strings.HasPrefix(fields[0], "l"):
			e.Kind = KindLink
		default:
			e.Kind = KindFile
		}
		entries = append(entries, e)
	}
	return entries, nil
}
