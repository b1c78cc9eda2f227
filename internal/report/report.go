// Package report renders probe results as plain text blocks.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NodePath81/httpbench/internal/probe"
	"github.com/NodePath81/httpbench/internal/util"
)

// FormatResult renders a single host block.
func FormatResult(r probe.Result) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Host: %s\n", r.Host)
	fmt.Fprintf(&b, "Success: %d\n", r.Success)
	fmt.Fprintf(&b, "Failed: %d\n", r.Failed)
	fmt.Fprintf(&b, "Errors: %d\n", r.Errors)
	fmt.Fprintf(&b, "Min: %s\n", util.FormatMillis(r.Min))
	fmt.Fprintf(&b, "Max: %s\n", util.FormatMillis(r.Max))
	fmt.Fprintf(&b, "Avg: %s\n", util.FormatMillis(r.Avg))
	return b.String()
}

// Render concatenates the blocks of all results in order.
func Render(results []probe.Result) string {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(FormatResult(r))
		b.WriteString("\n")
	}
	return b.String()
}

// Write stores text at path, or prints it to stdout when path is empty.
// If the file cannot be written the text is printed to stdout instead and
// the write error is returned; saved reports whether the file was written.
func Write(path, text string, stdout io.Writer) (saved bool, err error) {
	if path == "" {
		_, err = io.WriteString(stdout, text)
		return false, err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		fmt.Fprintln(stdout, "could not save to file, printing results:")
		_, _ = io.WriteString(stdout, text)
		return false, fmt.Errorf("write report %s: %w", path, err)
	}
	return true, nil
}
