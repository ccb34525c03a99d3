package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mapsengine/gme-cli/internal/config"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Example: `  gme status            # Show session state, refreshing an expired token
  gme status --json     # Machine readable`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.GroupID = groupAuth
	rootCmd.AddCommand(statusCmd)
}

type statusReport struct {
	Authenticated bool      `json:"authenticated"`
	ViewOnly      bool      `json:"view_only"`
	ExpiresOn     time.Time `json:"expires_on,omitempty"`
	TokenStore    string    `json:"token_store"`
	ConfigFile    string    `json:"config_file"`
	Error         string    `json:"error,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd.Context())
	if err != nil {
		return err
	}

	report := statusReport{
		TokenStore: app.cfg.TokenStore,
		ConfigFile: config.GetConfigFile(),
	}

	if app.session.IsAuthorizationAvailable() {
		token, err := app.session.GetToken(cmd.Context())
		if err != nil {
			logger.Error("Token refresh failed", err)
			report.Error = err.Error()
		} else {
			report.Authenticated = true
			report.ViewOnly = token.IsViewOnly
			report.ExpiresOn = token.ExpiresOn
		}
	}

	if jsonMode {
		return printJSON(report)
	}

	if !report.Authenticated {
		if report.Error != "" {
			fmt.Println(ui.ErrorStyle.Render("✗ Session expired"))
		} else {
			fmt.Println("✗ Not authenticated")
		}
		fmt.Println("\nRun 'gme login' to authenticate with Google Maps Engine")
		return nil
	}

	access := "edit"
	if report.ViewOnly {
		access = "view only"
	}
	fmt.Println(ui.SuccessStyle.Render("✓ Authenticated"))
	fmt.Printf("  Access:      %s\n", access)
	fmt.Printf("  Expires in:  %s\n", time.Until(report.ExpiresOn).Round(time.Second))
	fmt.Printf("  Token store: %s\n", report.TokenStore)
	fmt.Printf("  Config:      %s\n", ui.ShortenPath(report.ConfigFile))
	return nil
}
