package main

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pocketvec"
	"github.com/hupe1980/pocketvec/internal/format"
	"github.com/hupe1980/pocketvec/internal/mmap"
	"github.com/spf13/cobra"
)

type inspectReport struct {
	Path      string `json:"path"`
	Format    string `json:"format"`
	Encrypted bool   `json:"encrypted"`
	Locked    bool   `json:"locked,omitempty"`
	Quantized bool   `json:"quantized"`
	Dim       int    `json:"dim"`
	Count     int    `json:"count"`
	Size      int    `json:"size"`

	// Flat files only.
	Version      uint32 `json:"version,omitempty"`
	VecOffset    int    `json:"vec_offset,omitempty"`
	ParamsOffset int    `json:"params_offset,omitempty"`
	IDOffset     int    `json:"id_offset,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
}

func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Describe a store file",
		Long: `Print the format, mode and size of a growable or flat store file.
Encrypted growable files are only decoded when the key is available.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().Bool("verify", false, "Verify the flat body checksum")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	verify, _ := cmd.Flags().GetBool("verify")

	m, err := mmap.Open(args[0])
	if err != nil {
		if errors.Is(err, mmap.ErrEmptyFile) {
			return fmt.Errorf("%s: %w", args[0], format.ErrTruncated)
		}
		return err
	}
	defer m.Close()

	report, err := a.inspect(args[0], m.Bytes(), verify)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	if a.asJSON {
		return a.writeJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "format:    %s\n", report.Format)
	fmt.Fprintf(out, "encrypted: %t\n", report.Encrypted)
	if report.Locked {
		fmt.Fprintf(out, "size:      %d bytes\n", report.Size)
		fmt.Fprintln(out, "contents:  locked (no key)")
		return nil
	}
	fmt.Fprintf(out, "mode:      %s\n", modeLabel(report.Quantized))
	fmt.Fprintf(out, "dim:       %d\n", report.Dim)
	fmt.Fprintf(out, "count:     %d\n", report.Count)
	fmt.Fprintf(out, "size:      %d bytes\n", report.Size)
	if report.Format == format.FlatMagic {
		fmt.Fprintf(out, "version:   %d\n", report.Version)
		fmt.Fprintf(out, "sections:  vectors@%d params@%d ids@%d\n", report.VecOffset, report.ParamsOffset, report.IDOffset)
		fmt.Fprintf(out, "checksum:  %s\n", report.Checksum)
	}
	return nil
}

func (a *app) inspect(path string, data []byte, verify bool) (*inspectReport, error) {
	magic, err := format.ReadMagic(data)
	if err != nil {
		return nil, err
	}

	report := &inspectReport{Path: path, Format: magic, Size: len(data)}

	switch magic {
	case format.MagicPlain:
		g, err := format.DecodeGrowable(data)
		if err != nil {
			return nil, err
		}
		report.Quantized = g.Header.Quantized
		report.Dim = g.Header.Dim
		report.Count = g.Header.Count
	case format.MagicEncrypted:
		report.Encrypted = true

		key := a.key()
		if key == "" {
			report.Locked = true
			return report, nil
		}

		store := pocketvec.NewHeapStore(a.options()...)
		info, err := store.Load(path, key)
		if err != nil {
			return nil, err
		}
		report.Quantized = info.Quantized
		report.Dim = info.Dim
		report.Count = info.Count
	case format.FlatMagic:
		layout, err := format.ParseFlat(data)
		if err != nil {
			return nil, err
		}
		report.Quantized = layout.Quantized
		report.Dim = layout.Dim
		report.Count = layout.Count
		report.Version = layout.Header.Version
		report.VecOffset = layout.VecOffset
		report.ParamsOffset = layout.ParamsOffset
		report.IDOffset = layout.IDOffset

		switch {
		case !layout.Header.HasChecksum:
			report.Checksum = "none"
		case verify:
			if err := layout.VerifyChecksum(data); err != nil {
				return nil, err
			}
			report.Checksum = fmt.Sprintf("%08x (verified)", layout.Header.Checksum)
		default:
			report.Checksum = fmt.Sprintf("%08x", layout.Header.Checksum)
		}
	default:
		return nil, fmt.Errorf("%w: %q", format.ErrInvalidMagic, magic)
	}

	return report, nil
}

func modeLabel(quantized bool) string {
	if quantized {
		return "int8"
	}
	return "float32"
}
