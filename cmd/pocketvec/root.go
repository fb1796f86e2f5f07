package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pocketvec",
		Short: "On-device embedding store",
		Long: `Build, search and ship small embedding stores.

Growable stores are rewritten on every save and may be encrypted.
Flat stores are read-only and memory-mapped for fast search.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	addSubcommands(rootCmd)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("store", "", "Growable store path (overrides config)")
	cmd.PersistentFlags().String("key-env", "", "Environment variable holding the store key (overrides config)")
	cmd.PersistentFlags().String("cipher", "", "Cipher for encrypted stores: xor or aead (overrides config)")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", "", "Log format: text or json")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

func addSubcommands(root *cobra.Command) {
	root.AddCommand(
		NewImportCmd(),
		NewSearchCmd(),
		NewExportFlatCmd(),
		NewInspectCmd(),
		NewKeygenCmd(),
		NewBackupCmd(),
		NewRestoreCmd(),
		NewConfigCmd(),
	)
}
