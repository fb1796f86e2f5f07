package main

import (
	"fmt"

	"github.com/hupe1980/pocketvec/internal/archive"
	"github.com/hupe1980/pocketvec/internal/fs"
	"github.com/spf13/cobra"
)

type archiveReport struct {
	Source           string `json:"source"`
	Target           string `json:"target"`
	Codec            string `json:"codec"`
	UncompressedSize int64  `json:"uncompressed_size"`
	CompressedSize   int64  `json:"compressed_size"`
	Checksum         uint32 `json:"checksum"`
}

func NewBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup <store> <archive>",
		Short: "Compress a store file into a checksummed archive",
		Long: `Compress any store file, growable or flat, into an archive. Encrypted
stores are archived as they are.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			name, _ := cmd.Flags().GetString("codec")
			codec, err := archive.ParseCodec(name)
			if err != nil {
				return err
			}

			st, err := archive.Backup(fs.Default, args[0], args[1], codec)
			if err != nil {
				return fmt.Errorf("backup %s: %w", args[0], err)
			}

			return a.printArchive(cmd, args, st)
		},
	}

	cmd.Flags().String("codec", "zstd", "Compression codec: zstd or lz4")
	return cmd
}

func NewRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <archive> <store>",
		Short: "Verify an archive and write its store file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			st, err := archive.Restore(fs.Default, args[0], args[1])
			if err != nil {
				return fmt.Errorf("restore %s: %w", args[0], err)
			}

			return a.printArchive(cmd, args, st)
		},
	}
}

func (a *app) printArchive(cmd *cobra.Command, args []string, st archive.Stats) error {
	report := archiveReport{
		Source:           args[0],
		Target:           args[1],
		Codec:            st.Codec.String(),
		UncompressedSize: st.UncompressedSize,
		CompressedSize:   st.CompressedSize,
		Checksum:         st.Checksum,
	}

	if a.asJSON {
		return a.writeJSON(cmd, report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %d -> %d bytes)\n",
		report.Source, report.Target, report.Codec, report.UncompressedSize, report.CompressedSize)
	return nil
}
