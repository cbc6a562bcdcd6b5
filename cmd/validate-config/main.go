// Command validate-config loads a wb-ha-bridge config file and reports
// whether it is well-formed, without connecting to either broker (A7).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wb-ha-bridge/internal/config"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate a wb-ha-bridge configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			fmt.Printf("config OK: wirenboard=%s:%d homeassistant=%s:%d loglevel=%q\n",
				cfg.Wirenboard.BrokerHost, cfg.Wirenboard.BrokerPort,
				cfg.HomeAssistant.BrokerHost, cfg.HomeAssistant.BrokerPort,
				cfg.General.LogLevel)
			return nil
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to the config file to validate")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
