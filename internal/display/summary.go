// Package display renders the end-of-run summary and small human-readable
// formatting helpers for the CLI.
package display

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/JokerFrankZ/convert-videos/internal/batch"
)

// PrintSummary writes the per-job outcome table and the batch totals.
// Output sizes are stat'ed best-effort; a missing file prints no size.
func PrintSummary(w io.Writer, res *batch.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Conversion Summary ===")

	var totalBytes int64
	for _, jr := range res.Jobs {
		switch jr.Status {
		case batch.StatusSucceeded:
			size := outputSize(jr.OutputPath)
			totalBytes += size
			label := ""
			if size > 0 {
				label = "  (" + FormatBytes(size) + ")"
			}
			fmt.Fprintf(w, "  ok       %-12s %s%s\n", jr.Format, jr.OutputPath, label)
		case batch.StatusFailed:
			fmt.Fprintf(w, "  FAILED   %-12s %s: %v\n", jr.Format, jr.InputPath, jr.Err)
		case batch.StatusCancelled:
			fmt.Fprintf(w, "  skipped  %-12s %s (cancelled)\n", jr.Format, jr.InputPath)
		}
	}

	fmt.Fprintf(w, "\n%d succeeded, %d failed, %d cancelled in %s",
		res.Succeeded, res.Failed, res.Cancelled, FormatDuration(res.Elapsed))
	if totalBytes > 0 {
		fmt.Fprintf(w, ", %s written", FormatBytes(totalBytes))
	}
	fmt.Fprintln(w)
	if res.Interrupted {
		fmt.Fprintln(w, "batch was interrupted before completion")
	}
}

// outputSize returns the size of a job's output. Frame-pattern outputs
// (PNG sequences) are summed across their directory.
func outputSize(path string) int64 {
	if !strings.Contains(filepath.Base(path), "%") {
		fi, err := os.Stat(path)
		if err != nil {
			return 0
		}
		return fi.Size()
	}

	var total int64
	filepath.WalkDir(filepath.Dir(path), func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return total
}
