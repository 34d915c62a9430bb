package progress

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Options configures the progress reporter.
type Options struct {
	// Output is where to write progress output.
	// Default: os.Stdout
	Output io.Writer
}

// TransferRecord describes one file of a batch while its progress line is
// being printed.
type TransferRecord struct {
	Index        int // 1-based position in the batch
	Total        int
	Path         string
	Size         int64
	Elapsed      time.Duration
	TotalElapsed time.Duration
}

// Reporter prints discovery and transfer progress as plain lines.
//
// Every write is flushed before the method returns, so a transfer prefix is
// visible while the transfer it announces is still running.
type Reporter struct {
	mu         sync.Mutex
	w          *bufio.Writer
	indexWidth int
	pathWidth  int
}

// NewReporter creates a new progress reporter.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Reporter{w: bufio.NewWriter(opts.Output)}
}

// Found reports the n-th file discovered during a walk.
func (r *Reporter) Found(n int, path string) {
	r.printf("%d Found: %s\n", n, path)
}

// StartBatch fixes the column widths used by FileStarted. indexWidth is the
// number of digits of the batch size and pathWidth the length of its longest
// path.
func (r *Reporter) StartBatch(indexWidth, pathWidth int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.indexWidth = indexWidth
	r.pathWidth = pathWidth
}

// FileStarted prints the prefix of a transfer line: index, total, path and
// size. The line is left open until FileFinished.
func (r *Reporter) FileStarted(rec TransferRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%0*d/%d %-*s | %s",
		r.indexWidth, rec.Index,
		rec.Total,
		r.pathWidth, rec.Path,
		FormatSize(rec.Size),
	)
	r.w.Flush()
}

// FileFinished completes a transfer line with the file's elapsed time and
// the time elapsed since the batch began.
func (r *Reporter) FileFinished(rec TransferRecord) {
	r.printf(" | %s | %s\n", formatDuration(rec.Elapsed), formatDuration(rec.TotalElapsed))
}

// FileFailed terminates an open transfer line.
func (r *Reporter) FileFailed() {
	r.printf(" | failed\n")
}

// Message prints a free-form line.
func (r *Reporter) Message(format string, args ...any) {
	r.printf(format+"\n", args...)
}

// TotalTime prints the wall-clock time of a whole run.
func (r *Reporter) TotalTime(d time.Duration) {
	r.printf("Total time taken: %s\n", formatDuration(d))
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
	r.w.Flush()
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.3fs", d.Seconds())
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := d.Seconds() - float64(m*60)
		return fmt.Sprintf("%dm %06.3fs", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// FormatDuration is exported for use by other packages.
func FormatDuration(d time.Duration) string {
	return formatDuration(d)
}
