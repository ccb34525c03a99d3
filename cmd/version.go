package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Display version information",
	Example: "  gme version               # Show version info",
	Run:     runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Google Maps Engine CLI\n")
	fmt.Printf("  Version:    %s\n", version.Version)
	fmt.Printf("  Commit:     %s\n", version.CommitSHA)
	fmt.Printf("  Built:      %s\n", version.BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
	fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  User-Agent: %s\n", version.UserAgent())
}
