package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itprism/itpcron/internal/constants"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Validate the itpcron configuration.`,
}

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Load the configuration file, apply defaults and check for errors.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if len(args) > 0 {
			path = args[0]
		}

		if _, err := loadConfig(path); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), constants.MsgConfigValid)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}
