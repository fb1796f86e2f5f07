package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config file with default values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(args[0]); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", args[0])
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := SaveConfig(args[0], DefaultConfig()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			if a.asJSON {
				return a.writeJSON(cmd, a.cfg)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "store:      %s\n", a.cfg.Store)
			fmt.Fprintf(cmd.OutOrStdout(), "quantize:   %t\n", a.cfg.Quantize)
			fmt.Fprintf(cmd.OutOrStdout(), "cipher:     %s\n", a.cfg.Cipher)
			fmt.Fprintf(cmd.OutOrStdout(), "key_env:    %s\n", a.cfg.KeyEnv)
			fmt.Fprintf(cmd.OutOrStdout(), "checksum:   %t\n", a.cfg.Checksum)
			fmt.Fprintf(cmd.OutOrStdout(), "codec:      %s\n", a.cfg.Codec)
			fmt.Fprintf(cmd.OutOrStdout(), "log:        %s/%s\n", a.cfg.Log.Level, a.cfg.Log.Format)
			return nil
		},
	}
}
