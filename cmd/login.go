package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"github.com/mapsengine/gme-cli/internal/ui"
)

var (
	loginViewOnly bool
	loginCode     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Google Maps Engine",
	Long: `Authenticate with Google Maps Engine using the installed-application OAuth flow.

Open the printed URL in a browser and approve access. Google then shows a
page titled "Success code=..." (or just the code). Paste either one back here.`,
	Example: `  gme login                   # Request edit access
  gme login --view-only       # Request read-only access
  gme login --code 4/0Ab...   # Exchange a code obtained earlier`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginViewOnly, "view-only", false, "Request read-only scopes")
	loginCmd.Flags().StringVar(&loginCode, "code", "", "Authorization code or result text to exchange")
	loginCmd.GroupID = groupAuth
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := newAppContext(ctx)
	if err != nil {
		return err
	}
	if !app.cfg.HasClientCredentials() {
		return apperrors.NewUsageError("OAuth client is not configured. Set GME_CLIENT_ID and GME_CLIENT_SECRET")
	}

	if app.session.IsAuthorizationAvailable() && loginCode == "" {
		fmt.Println("✓ Already authenticated. Use 'gme logout' to sign out.")
		return nil
	}

	app.manager.ViewOnly = loginViewOnly

	result := loginCode
	if result == "" {
		fmt.Println("\n" + ui.BoldStyle.Render("Google Maps Engine Authentication"))
		fmt.Println(ui.FaintStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
		fmt.Printf("\n1. Visit: %s\n", ui.LinkStyle.Render(app.manager.AuthorizationURL()))
		fmt.Println("2. Approve access and copy the code shown by Google")

		prompter := ui.DefaultPrompter()
		result, err = prompter.ReadSecret("\nPaste the code: ")
		if err != nil {
			return apperrors.NewError(err, "Failed to read authorization code")
		}
	}

	token, err := app.manager.DecodeAuthorizationResult(ctx, authorizationResult(result))
	if err != nil {
		logger.Error("Authorization failed", err)
		return apperrors.NewAuthError(err, "Authorization failed")
	}
	if token == nil {
		fmt.Println("✗ Access was denied")
		return nil
	}

	app.session.SetToken(token)

	access := "edit"
	if token.IsViewOnly {
		access = "view only"
	}

	codeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	fmt.Println("\n" + codeStyle.Render("✓ Successfully authenticated!"))
	fmt.Printf("  Access:     %s\n", ui.BoldStyle.Render(access))
	fmt.Printf("  Expires at: %s\n", token.ExpiresOn.Local().Format(time.RFC1123))
	logger.Info("User logged in (%s)", access)
	return nil
}

// authorizationResult accepts the provider's result text or a bare code
func authorizationResult(input string) string {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "Success") || strings.HasPrefix(input, "Denied") {
		return input
	}
	return "Success code=" + input
}
