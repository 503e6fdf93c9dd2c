// Package root contains the root command for the application.
package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doctor-kat/ynab-assist/internal/config"
	"github.com/doctor-kat/ynab-assist/internal/container"
)

var (
	// Cmd is the root command.
	Cmd = &cobra.Command{
		Use:   "ynab-assist",
		Short: "An AI assistant for your YNAB budget.",
		Long: `ynab-assist connects an LLM agent to a YNAB budget. It caches
reference data with delta sync, resolves accounts, payees and categories by
name, and stages transaction edits for review before committing them in
batches.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// ReadOnly is the --read-only persistent flag; it overrides config.
	ReadOnly bool
)

// Init registers the root command's persistent flags.
func Init() {
	Cmd.PersistentFlags().BoolVar(&ReadOnly, "read-only", false, "disable all mutating operations")
}

// Build loads configuration and wires the dependency container. Shared by
// every subcommand.
func Build() (*container.Container, error) {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if ReadOnly {
		cfg.ReadOnly = true
	}
	return container.New(cfg)
}

// Exit prints an error and terminates with a non-zero status.
func Exit(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
