package result

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	pkgerrors "autojudge/pkg/errors"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Payload is the judge's result: a score line and everything after it.
type Payload struct {
	Summary string
	Body    string
}

// Read loads the result file. A byte order mark selects UTF-8 or UTF-16,
// anything else is read as UTF-8.
func Read(path string) (Payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return Payload{}, pkgerrors.Wrapf(err, pkgerrors.ReadFailure, "open result failed: %v", err).
			WithDetail("path", path)
	}
	defer f.Close()

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(f, decoder))
	if err != nil {
		return Payload{}, pkgerrors.Wrapf(err, pkgerrors.ReadFailure, "read result failed: %v", err).
			WithDetail("path", path)
	}
	return Parse(string(data)), nil
}

// Parse splits raw result text at the first line break.
func Parse(text string) Payload {
	summary, body, _ := strings.Cut(text, "\n")
	return Payload{
		Summary: strings.TrimSuffix(summary, "\r"),
		Body:    body,
	}
}

// Report prints the payload body, then the summary line, then the elapsed time.
func Report(w io.Writer, p Payload, elapsed time.Duration) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw)
	fmt.Fprintln(bw, strings.TrimRight(p.Body, "\r\n"))
	fmt.Fprintln(bw, p.Summary)
	fmt.Fprintf(bw, "Task approximately completed in %s\n", FormatElapsed(elapsed))
	fmt.Fprintln(bw, "Done.")
	return bw.Flush()
}

// FormatElapsed renders d as [-][d.]hh:mm:ss[.fffffff] with 100ns ticks.
func FormatElapsed(d time.Duration) string {
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	ticks := (d - seconds*time.Second) / 100

	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", hours, minutes, seconds)
	if ticks > 0 {
		fmt.Fprintf(&b, ".%07d", ticks)
	}
	return b.String()
}
