package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_ReadLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("  4/abcd  \nsecond\n"), &out)

	got, err := p.ReadLine("Code: ")
	require.NoError(t, err)
	assert.Equal(t, "4/abcd", got)
	assert.Equal(t, "Code: ", out.String())

	got, err = p.ReadLine("Next: ")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = p.ReadLine("Empty: ")
	assert.Error(t, err)
}

func TestPrompter_ReadLine_NoTrailingNewline(t *testing.T) {
	p := NewPrompter(strings.NewReader("last"), &bytes.Buffer{})

	got, err := p.ReadLine("> ")

	require.NoError(t, err)
	assert.Equal(t, "last", got)
}

func TestPrompter_ReadSecret_Piped(t *testing.T) {
	p := NewPrompter(strings.NewReader("s3cret\n"), &bytes.Buffer{})

	got, err := p.ReadSecret("Secret: ")

	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.False(t, p.IsInteractive())
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.Confirm("Continue?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgressBar_Report(t *testing.T) {
	var out bytes.Buffer
	pb := NewProgressBar(&out)

	pb.Report("a.csv", 0, 2)
	assert.Contains(t, out.String(), "1/2")
	assert.Contains(t, out.String(), "a.csv")

	pb.Report("", 2, 2)
	assert.True(t, strings.HasSuffix(out.String(), "2/2 files\n"))

	out.Reset()
	pb.Report("late.csv", 1, 2)
	assert.Empty(t, out.String())
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	var out bytes.Buffer
	NewProgressBar(&out).Report("", 0, 0)
	assert.Empty(t, out.String())
}

func TestShortenPath(t *testing.T) {
	assert.Equal(t, "/U/j/w/project", ShortenPath("/Users/john/workspaces/project"))
	assert.Equal(t, "file.csv", ShortenPath("file.csv"))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(1536*1024))
}

func TestFileSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0600))

	assert.Equal(t, "2.0 KB", FileSize(path))
	assert.Equal(t, "", FileSize(filepath.Join(t.TempDir(), "missing")))
}
