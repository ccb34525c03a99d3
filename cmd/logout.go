package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/ui"
)

var (
	forceLogout bool
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and delete stored credentials",
	Example: `  gme logout            # Log out with confirmation prompt
  gme logout --force    # Log out without confirmation`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	logoutCmd.Flags().BoolVar(&forceLogout, "force", false, "Skip confirmation prompt")
	logoutCmd.GroupID = groupAuth
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd.Context())
	if err != nil {
		return err
	}

	if !app.session.IsAuthorizationAvailable() && app.session.Current() == nil {
		fmt.Println("Not currently authenticated")
		return nil
	}

	// Confirm logout unless --force is used
	if !forceLogout {
		confirm, err := ui.DefaultPrompter().Confirm("Are you sure you want to sign out?")
		if err != nil {
			return apperrors.NewError(err, "Failed to read input")
		}
		if !confirm {
			fmt.Println("Logout cancelled")
			return nil
		}
	}

	if err := app.session.ClearToken(); err != nil {
		logger.Error("Failed to clear token", err)
		return apperrors.NewError(err, "Failed to clear credentials")
	}

	logger.Info("User logged out")
	fmt.Println(ui.SuccessStyle.Render("✓ Successfully signed out"))
	return nil
}
