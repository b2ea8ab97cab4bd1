package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "parallax",
	Short: "Parallax - multi-provider LLM comparison server",
	Long: `Parallax fans one prompt out to several LLM providers concurrently and
returns every provider's response side-by-side, with per-response latency,
token, and cost metrics, persisted under conversations.

Supported providers: OpenAI, Anthropic, Perplexity, Google Gemini.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
