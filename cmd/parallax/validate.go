package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"parallax-hq/parallax/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting the server.

Checks YAML syntax, provider ids, backend selections, retention cron
expressions, and API key entries, with defaults and environment overrides
applied the same way the server would.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		fmt.Println("configuration valid")
		fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
		fmt.Printf("  store backend:  %s\n", cfg.Store.Backend)
		fmt.Printf("  providers:      %d configured\n", len(cfg.AdapterConfigs()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
