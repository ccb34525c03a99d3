package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long:  "Generate the autocompletion script for gme for the specified shell.",
	Example: `  # Bash (Linux)
  gme completion bash > /etc/bash_completion.d/gme

  # Bash (macOS with Homebrew)
  gme completion bash > $(brew --prefix)/etc/bash_completion.d/gme

  # Zsh (macOS with Homebrew)
  gme completion zsh > $(brew --prefix)/share/zsh/site-functions/_gme

  # Fish
  gme completion fish > ~/.config/fish/completions/gme.fish

  # PowerShell
  gme completion powershell >> $PROFILE`,
	DisableFlagsInUseLine: true,
}

var completionBashCmd = &cobra.Command{
	Use:   "bash",
	Short: "Generate the autocompletion script for bash",
	Example: `  # Load in current session
  source <(gme completion bash)

  # Linux - load permanently
  sudo gme completion bash > /etc/bash_completion.d/gme

  # macOS (Homebrew) - load permanently
  gme completion bash > $(brew --prefix)/etc/bash_completion.d/gme`,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenBashCompletionV2(os.Stdout, true)
	},
}

var completionZshCmd = &cobra.Command{
	Use:   "zsh",
	Short: "Generate the autocompletion script for zsh",
	Example: `  # Load in current session
  source <(gme completion zsh)

  # Linux - load permanently
  gme completion zsh > "${fpath[1]}/_gme"

  # macOS (Homebrew) - load permanently
  gme completion zsh > $(brew --prefix)/share/zsh/site-functions/_gme`,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenZshCompletion(os.Stdout)
	},
}

var completionFishCmd = &cobra.Command{
	Use:   "fish",
	Short: "Generate the autocompletion script for fish",
	Example: `  # Load in current session
  gme completion fish | source

  # Load permanently
  gme completion fish > ~/.config/fish/completions/gme.fish`,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenFishCompletion(os.Stdout, true)
	},
}

var completionPowershellCmd = &cobra.Command{
	Use:   "powershell",
	Short: "Generate the autocompletion script for powershell",
	Example: `  # Load in current session
  gme completion powershell | Out-String | Invoke-Expression

  # Load permanently (add to your PowerShell profile)
  gme completion powershell >> $PROFILE`,
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	},
}

func init() {
	completionCmd.AddCommand(completionBashCmd)
	completionCmd.AddCommand(completionZshCmd)
	completionCmd.AddCommand(completionFishCmd)
	completionCmd.AddCommand(completionPowershellCmd)
	rootCmd.AddCommand(completionCmd)
}
