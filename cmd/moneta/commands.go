// Copyright (c) 2025 Moneta Team
// Moneta - personal finance application
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/moneta-app/moneta/internal/command"
	"github.com/moneta-app/moneta/internal/i18n"
	"github.com/moneta-app/moneta/internal/securestore"
	"github.com/moneta-app/moneta/internal/security"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// readSecretValue obtains the plaintext to store: from the --value flag when
// given (useful for scripting), otherwise via a no-echo terminal prompt.
func readSecretValue(cmd *cobra.Command) ([]byte, error) {
	if v, _ := cmd.Flags().GetString("value"); v != "" {
		return []byte(v), nil
	}
	fmt.Fprint(os.Stderr, i18n.T("prompt.secret_value"))
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return value, nil
}

var storeCmd = &cobra.Command{
	Use:   "store OWNER DATA_TYPE",
	Short: "Encrypt and store a secret for an owner and data type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		value, err := readSecretValue(cmd)
		if err != nil {
			return err
		}
		var expiresAt *time.Time
		if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
			t := time.Now().Add(ttl)
			expiresAt = &t
		}
		res, err := d.StoreSecret(args[0], args[1], security.NewSensitive(value), expiresAt)
		if err != nil {
			return err
		}
		fmt.Println(i18n.T("secure.stored", args[0], args[1], res.StorageKey))
		return nil
	},
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve OWNER DATA_TYPE",
	Short: "Retrieve a stored secret (metadata only unless --reveal)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		reveal, _ := cmd.Flags().GetBool("reveal")
		if reveal {
			secret, err := d.RevealSecret(args[0], args[1])
			if err != nil {
				if errors.Is(err, command.ErrNotFound) {
					return errors.New(i18n.T("secure.not_found", args[0], args[1]))
				}
				return err
			}
			// Deliberately the only place plaintext reaches output, and
			// only on explicit request.
			fmt.Println(string(secret.Expose()))
			return nil
		}
		res, err := d.Retrieve(args[0], args[1])
		if err != nil {
			if errors.Is(err, command.ErrNotFound) {
				return errors.New(i18n.T("secure.not_found", args[0], args[1]))
			}
			return err
		}
		fmt.Println(i18n.T("secure.retrieved", args[0], args[1]))
		fmt.Printf("  algorithm: %s\n  key_id: %s\n  stored_at: %s\n  payload: %s\n",
			res.Algorithm, res.KeyID, res.StoredAt.Format(time.RFC3339), security.RedactionMarker)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete OWNER DATA_TYPE",
	Short: "Delete the stored secret for an owner and data type",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		res, err := d.Delete(args[0], args[1])
		if err != nil {
			return err
		}
		if res.Deleted {
			fmt.Println(i18n.T("secure.deleted", args[0], args[1]))
		} else {
			fmt.Println(i18n.T("secure.delete_missing", args[0], args[1]))
		}
		return nil
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove all expired records now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		removed, err := d.CleanupExpired()
		if err != nil {
			return err
		}
		fmt.Println(i18n.T("secure.cleanup_done", removed))
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show secure storage usage grouped by data type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := newDispatcher()
		if err != nil {
			return err
		}
		owner, _ := cmd.Flags().GetString("owner")
		stats, err := d.Statistics(owner)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Println(i18n.T("secure.stats_empty"))
			return nil
		}
		fmt.Println(i18n.T("secure.stats_header"))
		for _, s := range stats {
			fmt.Println(i18n.T("secure.stats_row", s.OwnerID, s.DataType, s.RecordCount, s.TotalBytes))
		}
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup FILE",
	Short: "Write a compressed backup of the secure store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := securestore.ExportDataForBackup()
		if err != nil {
			return err
		}
		f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("create backup file: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := securestore.WriteBackup(data, f); err != nil {
			return err
		}
		fmt.Println(i18n.T("secure.backup_written", args[0]))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore FILE",
	Short: "Restore the secure store from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open backup file: %w", err)
		}
		defer func() { _ = f.Close() }()
		full, _ := cmd.Flags().GetBool("full")
		if err := securestore.Restore(f, securestore.RestoreOptions{Full: full}, securestore.Default()); err != nil {
			return err
		}
		fmt.Println(i18n.T("secure.restore_done"))
		return nil
	},
}

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run engine-specific database maintenance (VACUUM etc.)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := securestore.RunMaintenance(viper.GetString("database.type"), viper.GetString("database.dsn")); err != nil {
			return err
		}
		fmt.Println(i18n.T("secure.maintenance_done"))
		return nil
	},
}

func init() {
	storeCmd.Flags().String("value", "", "Secret value (omit to be prompted without echo)")
	storeCmd.Flags().Duration("ttl", 0, "Time to live; 0 means the record never expires")
	retrieveCmd.Flags().Bool("reveal", false, "Decrypt and print the plaintext value")
	statsCmd.Flags().String("owner", "", "Restrict statistics to one owner")
	restoreCmd.Flags().Bool("full", false, "Wipe existing records before restoring")
}
