package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/config"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/ui"
	"github.com/mapsengine/gme-cli/internal/update"
	"github.com/mapsengine/gme-cli/internal/version"
)

var (
	checkOnly bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer gme release",
	Example: `  gme update --check   # Compare with the latest release
  gme update --json    # Machine readable`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only check for updates, don't print install instructions")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	currentVersion := version.Version
	say("Current version: %s\n\n", currentVersion)
	say("🔍 Checking for updates...\n")

	result, err := update.NewChecker(nil).Check(ctx, currentVersion)
	if errors.Is(err, update.ErrNoRelease) {
		fmt.Println("No releases published yet")
		return nil
	}
	if err != nil {
		logger.Error("Failed to check for updates", err)
		return apperrors.NewNetworkError(err, "Failed to check for updates. Please check your internet connection and try again.")
	}
	recordUpdateCheck()

	if jsonMode {
		return printJSON(result)
	}

	logger.Debug("Latest version: %s", result.Latest.GetVersion())
	if !result.UpdateAvailable {
		fmt.Println(ui.SuccessStyle.Render("✓ Already on the latest version!"))
		return nil
	}

	fmt.Printf("%s %s → %s\n",
		ui.WarnStyle.Render("⚡ Update available:"),
		currentVersion,
		ui.BoldStyle.Render(result.Latest.GetVersion()))
	fmt.Printf("  Download: %s\n", ui.LinkStyle.Render(result.Latest.HTMLURL))
	if !checkOnly {
		fmt.Println("\nDownload the archive for your platform and replace the gme binary on your PATH.")
	}
	return nil
}

// recordUpdateCheck stores the time of the last successful check
func recordUpdateCheck() {
	cfg, err := config.Load()
	if err != nil {
		return
	}
	cfg.LastUpdateCheck = time.Now()
	if err := cfg.Save(); err != nil {
		logger.Debug("Failed to save update check time: %v", err)
	}
}
