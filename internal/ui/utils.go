package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	WarnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	FaintStyle   = lipgloss.NewStyle().Faint(true)
	LinkStyle    = lipgloss.NewStyle().Underline(true)
)

// ShortenPath shortens a path by abbreviating parent directories
// e.g., /Users/john/workspaces/project -> /U/j/w/project
func ShortenPath(path string) string {
	parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
	if len(parts) <= 2 {
		return path
	}

	for i := 0; i < len(parts)-1; i++ {
		if parts[i] != "" {
			parts[i] = string(parts[i][0])
		}
	}

	return strings.Join(parts, string(filepath.Separator))
}

// FileSize returns the human readable size of path, or "" if it cannot be read
func FileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return formatBytes(info.Size())
}
