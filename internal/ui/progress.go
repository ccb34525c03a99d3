package ui

import (
	"fmt"
	"io"
	"strings"
)

// ProgressBar renders per-file upload progress on a single line
type ProgressBar struct {
	out   io.Writer
	width int
	done  bool
}

// NewProgressBar creates a new progress bar writing to out
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out, width: 30}
}

// Report draws the bar for the file at index out of total. It matches
// upload.ProgressFunc; the completion call (index == total) ends the line.
func (pb *ProgressBar) Report(fileName string, index, total int) {
	if total <= 0 || pb.done {
		return
	}

	filled := pb.width * index / total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.width-filled)

	if index >= total {
		fmt.Fprintf(pb.out, "\r\033[K[%s] %d/%d files\n", bar, total, total)
		pb.done = true
		return
	}

	fmt.Fprintf(pb.out, "\r\033[K[%s] %d/%d %s", bar, index+1, total, FaintStyle.Render(fileName))
}

// formatBytes formats bytes to human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
