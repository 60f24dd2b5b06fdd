/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/josephgoksu/promptforge/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// version is the application version.
	// Set via ldflags at build time: -ldflags "-X github.com/josephgoksu/promptforge/cmd.version=1.0.0"
	version = "dev"

	// cfgFile is the optional --config flag value, shared by every subcommand.
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "promptforge",
	Short: "promptforge - turn rough ideas into structured, high-quality prompts",
	Long: `promptforge - turn rough ideas into structured, high-quality prompts

Classifies intent and complexity, retrieves similar few-shot examples,
assembles a prompt, and runs it through an intent-routed optimizer
(Reflexion or OPRO) with quality gates and a result cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command. Called once by main.main.
func Execute() {
	defer logger.HandlePanic()

	rootCmd.SuggestionsMinimumDistance = 2
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	logger.SetBasePath(".promptforge")
	logger.SetVersion(version)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a promptforge config file (yaml/json/toml)")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the promptforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
