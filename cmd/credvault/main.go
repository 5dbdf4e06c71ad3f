// Package main - credvault admin CLI
package main

import (
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cliArgs global CLI arguments
type cliArgs struct {
	// SqliteFile local sqlite vault file
	SqliteFile string
	// PostgresDSN hosted postgres vault; takes priority over SqliteFile
	PostgresDSN string
	// TenantID the tenant whose vault is operated on
	TenantID string
	// EnvelopeAlgo encryption scheme for new envelopes
	EnvelopeAlgo string
	// LogLevel application log level
	LogLevel string
	// NoSpinner disable progress spinner
	NoSpinner bool
}

var cmdArgs cliArgs

var rootCmd = &cobra.Command{
	Use:   "credvault",
	Short: "credvault - tenant-scoped encrypted credential vault",
	Long: `credvault stores credentials for a tenant, encrypted under the tenant's vault
passphrase. Only the titles, usernames, and URLs are stored in plain text.

The passphrase is read from the terminal without echo, or from CREDVAULT_PASSPHRASE.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := log.ParseLevel(cmdArgs.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level '%s' [%w]", cmdArgs.LogLevel, err)
		}
		log.SetLevel(level)
		if cmdArgs.TenantID == "" {
			return fmt.Errorf("--tenant is required")
		}
		return nil
	},
}

// registerGlobalFlags install the flags shared by every command
func registerGlobalFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cmdArgs.SqliteFile, "db", "credvault.db", "local sqlite vault file")
	flags.StringVar(
		&cmdArgs.PostgresDSN, "postgres-dsn", "", "postgres connection string; overrides --db",
	)
	flags.StringVarP(&cmdArgs.TenantID, "tenant", "t", os.Getenv("CREDVAULT_TENANT"), "tenant ID")
	flags.StringVar(
		&cmdArgs.EnvelopeAlgo, "algo", "", "encryption scheme for new entries (default scheme if empty)",
	)
	flags.StringVar(&cmdArgs.LogLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.BoolVar(&cmdArgs.NoSpinner, "no-spinner", false, "disable progress spinner")
}

func init() {
	registerGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(saveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(revealCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+describeError(err))
		os.Exit(1)
	}
}
