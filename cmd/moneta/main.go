// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for Moneta's secure
// storage subsystem using the Cobra library. It defines the root command,
// subcommands (store, retrieve, delete, cleanup, stats, backup, restore,
// maintain), flags, and the main entry point for execution.

package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/moneta-app/moneta/buildvars"
	"github.com/moneta-app/moneta/internal/command"
	"github.com/moneta-app/moneta/internal/crypto"
	"github.com/moneta-app/moneta/internal/i18n"
	"github.com/moneta-app/moneta/internal/logging"
	"github.com/moneta-app/moneta/internal/sanitize"
	"github.com/moneta-app/moneta/internal/securestore"
	"github.com/moneta-app/moneta/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev" // this will be set by the linker
var cfgFile string

// main is the entry point of the application.
func main() {
	if err := rootCmd.Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

var rootCmd *cobra.Command

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()

	// Set defaults in viper. These are used if not set in the config file or by flags.
	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.dsn", "./moneta.db")
	viper.SetDefault("language", "en")
	viper.SetDefault("encryption.key_id", "k1")
	viper.SetDefault("encryption.algorithm", crypto.AlgorithmAESGCM)
	viper.SetDefault("cleanup.interval", service.DefaultSweepInterval.String())
}

// newRootCmd creates and configures a new root cobra command.
// This function is used to create the main application command as well as
// fresh instances for isolated testing.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moneta",
		Short: "Moneta secure storage manages encrypted credentials for the Moneta app.",
		Long: `Moneta's secure storage subsystem persists encrypted payloads
(API keys, tokens, credentials) keyed by owner and data type. Records
may carry an expiry and are swept automatically; sensitive values are
redacted from all output by construction.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Initialize the store for all commands.
			// Viper has already read the config by this point.
			dbType := viper.GetString("database.type")
			i18n.Init(viper.GetString("language"))
			logging.SetDebug(viper.GetBool("debug"))
			// Config inspection must work before a database exists.
			if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if path := viper.GetString("sanitize.policy_file"); path != "" {
				policy, err := sanitize.LoadPolicyFile(path)
				if err != nil {
					return fmt.Errorf("load sanitize policy: %w", err)
				}
				logging.SetPolicy(policy)
			}
			dsn := viper.GetString("database.dsn")
			if err := securestore.Init(dbType, dsn); err != nil {
				return errors.New(i18n.T("config.error_init_db", err))
			}
			return nil
		},
	}

	// Add subcommands to the newly created root command.
	cmd.AddCommand(storeCmd)
	cmd.AddCommand(retrieveCmd)
	cmd.AddCommand(deleteCmd)
	cmd.AddCommand(cleanupCmd)
	cmd.AddCommand(statsCmd)
	cmd.AddCommand(backupCmd)
	cmd.AddCommand(restoreCmd)
	cmd.AddCommand(maintainCmd)
	cmd.AddCommand(configCmd)

	// Set version
	cmd.Version = buildvars.VersionOrDefault(version)

	// Define flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is moneta.yaml in the user config dir or current dir)")
	cmd.PersistentFlags().String("db-type", "sqlite", "Database type (e.g., sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("db-dsn", "./moneta.db", "Database connection string (DSN)")
	cmd.PersistentFlags().String("lang", "en", `CLI language ("en", "de")`)
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	// Bind flags to viper
	viper.BindPFlag("database.type", cmd.PersistentFlags().Lookup("db-type"))
	viper.BindPFlag("database.dsn", cmd.PersistentFlags().Lookup("db-dsn"))
	viper.BindPFlag("language", cmd.PersistentFlags().Lookup("lang"))
	viper.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))

	return cmd
}

// initConfig reads in a configuration file and environment variables.
// It uses Viper to search for a config file (moneta.yaml) in the standard
// config locations and the current directory. If a config file is not found,
// it attempts to create a default one. It also binds environment variables
// prefixed with "MONETA".
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("moneta")
	}

	viper.SetEnvPrefix("MONETA")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can create one with default
		// values to make configuration discoverable for the user.
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && cfgFile == "" {
			const defaultConfigPath = "moneta.yaml"
			defaultContent := `# Moneta secure storage configuration file.
# This file is automatically generated with default values.

database:
  # The type of database to use. Supported values: "sqlite", "postgres", "mysql".
  type: sqlite
  # The data source name (DSN). For sqlite this is the file path.
  dsn: ./moneta.db

# CLI language ("en", "de").
language: en

encryption:
  # Identifier of the active encryption key. Rotate by adding a new key
  # under a new id; old records remain readable.
  key_id: k1
  # Base64-encoded 32-byte key. Also settable via MONETA_ENCRYPTION_KEY.
  key: ""
  # Algorithm for new encryptions: "AES-256-GCM" or "XCHACHA20-POLY1305".
  algorithm: AES-256-GCM

cleanup:
  # Fixed interval between automatic expiry sweeps.
  interval: 15m
`
			if werr := os.WriteFile(defaultConfigPath, []byte(defaultContent), 0600); werr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
		}
	}
}

// newDispatcher builds the command dispatcher from the resolved
// configuration: the initialized store, a keyring when key material is
// configured, and the service coordinator settings.
func newDispatcher() (*command.Dispatcher, error) {
	st := securestore.Default()
	if st == nil {
		return nil, errors.New("secure store not initialized")
	}

	var ring *crypto.Keyring
	if encoded := viper.GetString("encryption.key"); encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode encryption key: %w", err)
		}
		ring = crypto.NewKeyring(viper.GetString("encryption.algorithm"))
		if err := ring.AddKey(viper.GetString("encryption.key_id"), key); err != nil {
			return nil, err
		}
	}

	interval := service.DefaultSweepInterval
	if s := viper.GetString("cleanup.interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 {
			interval = d
		}
	}

	return command.NewDispatcher(st, ring, service.Config{Store: st, SweepInterval: interval}), nil
}
