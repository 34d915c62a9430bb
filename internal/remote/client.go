package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gonzalop/ftp"
)

// Conn is the FTP capability the backup depends on.
type Conn interface {
	// Type sets the transfer type ("I" for binary).
	Type(transferType string) error

	// Size returns the size in bytes of a remote file.
	Size(path string) (int64, error)

	// List returns the parsed detailed listing of a directory.
	// An empty path lists the current directory.
	List(path string) ([]*ftp.Entry, error)

	// NameList returns the name-only listing of a directory.
	NameList(path string) ([]string, error)

	// Retrieve streams a remote file into w in binary mode.
	Retrieve(remotePath string, w io.Writer) error

	// Quit closes the connection.
	Quit() error
}

var _ Conn = (*ftp.Client)(nil)

// Options configures the FTP connection.
type Options struct {
	// Timeout applies to dialing and to each command.
	// Default: 30s
	Timeout time.Duration

	// Logger receives protocol debug output. Nil discards it.
	Logger *slog.Logger
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout: 30 * time.Second,
	}
}

// ConnectionError is returned when the server cannot be reached or rejects
// the credentials.
type ConnectionError struct {
	Addr string
	Op   string // "dial" or "login"
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Dial connects to addr ("host:port") and logs in. The caller owns the
// returned client and must Quit it.
func Dial(ctx context.Context, addr, user, password string, opts Options) (*ftp.Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	options := []ftp.Option{ftp.WithTimeout(opts.Timeout)}
	if opts.Logger != nil {
		options = append(options, ftp.WithLogger(opts.Logger))
	}

	client, err := ftp.Dial(addr, options...)
	if err != nil {
		return nil, &ConnectionError{Addr: addr, Op: "dial", Err: err}
	}

	if err := client.Login(user, password); err != nil {
		client.Quit()
		return nil, &ConnectionError{Addr: addr, Op: "login", Err: err}
	}

	return client, nil
}
