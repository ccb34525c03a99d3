/*
Copyright © 2025 Sun Asterisk Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ASCII banner for the gme CLI
const asciiBanner = `
   __ _ _ __ ___   ___
  / _` + "`" + ` | '_ ` + "`" + ` _ \ / _ \
 | (_| | | | | | |  __/
  \__, |_| |_| |_|\___|
  |___/
`

// ANSI color codes for terminal output
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
)

// PrintBanner prints the ASCII banner if not in quiet mode
func PrintBanner(w io.Writer) {
	if quietMode {
		return
	}
	if isColorEnabled() {
		fmt.Fprint(w, colorCyan)
	}
	fmt.Fprint(w, asciiBanner)
	if isColorEnabled() {
		fmt.Fprint(w, colorReset)
	}
}

// isColorEnabled checks if color output should be enabled
func isColorEnabled() bool {
	// Disable colors if NO_COLOR env var is set (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	// Disable colors if TERM is "dumb"
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	// Check if stdout is a terminal
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		return false
	}
	return true
}

// SetCustomHelp configures custom help templates for the CLI
func SetCustomHelp(cmd *cobra.Command) {
	// Set custom usage template
	cmd.SetUsageTemplate(getUsageTemplate())

	// Set custom help template
	cmd.SetHelpTemplate(getHelpTemplate())

	// Override help function to show banner
	originalHelpFunc := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		// Only show banner for root command
		if c == rootCmd && !quietMode {
			PrintBanner(c.OutOrStdout())
		}
		originalHelpFunc(c, args)
	})
}

// getUsageTemplate returns a custom usage template
func getUsageTemplate() string {
	return `Usage:{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

Aliases:
  {{.NameAndAliases}}{{end}}{{if .HasAvailableSubCommands}}{{$cmds := .Commands}}{{if eq (len .Groups) 0}}

Commands:{{range $cmds}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{else}}{{range $group := .Groups}}

{{.Title}}{{range $cmds}}{{if (and (eq .GroupID $group.ID) (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if not .AllChildCommandsHaveGroup}}

Subcommands:{{range $cmds}}{{if (and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help")))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasHelpSubCommands}}

Additional help topics:{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .CommandPath .CommandPathPadding}} {{.Short}}{{end}}{{end}}{{end}}{{if .HasExample}}

Examples:
{{.Example}}{{end}}
`
}

// getHelpTemplate returns a custom help template
func getHelpTemplate() string {
	return `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}{{if or .Runnable .HasSubCommands}}{{.UsageString}}{{end}}`
}

// Command groups shown in the root help
const (
	groupAuth   = "auth"
	groupBrowse = "browse"
	groupData   = "data"
)

// InitHelp sets up the custom help formatting - called from root.go init
func InitHelp() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupAuth, Title: "Authentication:"},
		&cobra.Group{ID: groupBrowse, Title: "Browse:"},
		&cobra.Group{ID: groupData, Title: "Data:"},
	)
	SetCustomHelp(rootCmd)
}
