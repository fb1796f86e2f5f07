package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewExportFlatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-flat <out.mfvs>",
		Short: "Write the growable store as a read-only flat store",
		Args:  cobra.ExactArgs(1),
		RunE:  runExportFlat,
	}

	cmd.Flags().Bool("checksum", true, "Record a CRC32C of the flat body")
	return cmd
}

func runExportFlat(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("checksum") {
		a.cfg.Checksum, _ = cmd.Flags().GetBool("checksum")
	}

	store, err := a.loadHeap(a.cfg.Store, false)
	if err != nil {
		return err
	}

	if err := store.SaveFlat(args[0]); err != nil {
		return fmt.Errorf("export %s: %w", args[0], err)
	}

	if a.asJSON {
		return a.writeJSON(cmd, map[string]any{
			"path":      args[0],
			"count":     store.Len(),
			"dim":       store.Dim(),
			"quantized": store.Quantized(),
			"checksum":  a.cfg.Checksum,
		})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %d vectors to %s\n", store.Len(), args[0])
	return nil
}
