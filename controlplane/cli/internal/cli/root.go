// Package cli implements the operator command surface: one cobra
// subcommand tree per entity (device, link, user, multicastgroup, tenant,
// accesspass, globalconfig, globalstate), plus the composite operations
// that sequence several ledger writes under progress reporting
// (DeleteMulticastGroup's allowlist scrub, DeleteTenant's cascade, and
// Disconnect).
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/dz-network/doublezero/config"
	"github.com/spf13/cobra"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// Run builds the command tree and executes it against os.Args, returning
// the process exit code.
func Run() ExitCode {
	rootCmd := &cobra.Command{
		Use:   "dzcli",
		Short: "Operator CLI for the DoubleZero serviceability program.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	var env string
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", config.EnvDevnet, "the network environment to target (devnet, testnet, mainnet-beta, localnet)")

	var keypairPath string
	rootCmd.PersistentFlags().StringVarP(&keypairPath, "keypair", "k", defaultKeypairPath(), "path to the payer/authority keypair, used by any write command")

	var jsonOutput bool
	rootCmd.PersistentFlags().Bool("json", false, "print list/get output as pretty-printed JSON")
	var jsonCompact bool
	rootCmd.PersistentFlags().Bool("json-compact", false, "print list/get output as compact single-line JSON")
	_ = jsonOutput
	_ = jsonCompact

	rootCmd.AddCommand(
		NewDeviceCmd().Command(),
		NewLinkCmd().Command(),
		NewUserCmd().Command(),
		NewMulticastGroupCmd().Command(),
		NewTenantCmd().Command(),
		NewAccessPassCmd().Command(),
		NewGlobalConfigCmd().Command(),
		NewGlobalStateCmd().Command(),
	)

	if err := rootCmd.Execute(); err != nil {
		return exitCodeError
	}

	return exitCodeSuccess
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func defaultKeypairPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.config/doublezero/id.json"
}
