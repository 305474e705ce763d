// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/moneta-app/moneta/internal/config"
	"github.com/moneta-app/moneta/internal/security"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and initialize the Moneta configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfgPath *string
		if cfgFile != "" {
			cfgPath = &cfgFile
		}
		settings, err := config.LoadConfig[config.Settings](cmd, defaultsMap(), cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		// Key material never reaches output, resolved config included.
		if settings.Encryption.Key != "" {
			settings.Encryption.Key = security.RedactionMarker
		}
		out, err := yaml.Marshal(settings)
		if err != nil {
			return fmt.Errorf("render config: %w", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := config.DefaultSettings()
		system, _ := cmd.Flags().GetBool("system")
		if err := config.WriteConfigFile(&settings, system); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		return nil
	},
}

// defaultsMap mirrors the viper defaults for the typed loading path.
func defaultsMap() map[string]any {
	d := config.DefaultSettings()
	return map[string]any{
		"database.type":        d.Database.Type,
		"database.dsn":         d.Database.DSN,
		"language":             d.Language,
		"encryption.key_id":    d.Encryption.KeyID,
		"encryption.algorithm": d.Encryption.Algorithm,
		"cleanup.interval":     d.Cleanup.Interval,
	}
}

func init() {
	configInitCmd.Flags().Bool("system", false, "Write to the system-wide location instead of the user config dir")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
