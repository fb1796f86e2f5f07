package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hupe1980/pocketvec"
	"github.com/spf13/cobra"
)

const maxLineSize = 64 << 20

type importRecord struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

type importReport struct {
	Store     string `json:"store"`
	Imported  int    `json:"imported"`
	Count     int    `json:"count"`
	Dim       int    `json:"dim"`
	Quantized bool   `json:"quantized"`
	Encrypted bool   `json:"encrypted"`
}

func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.jsonl|->",
		Short: "Add vectors from a JSON Lines file",
		Long: `Read one {"id": ..., "vector": [...]} object per line and add it to the
growable store, creating the store if needed. Lines without an id get a
random UUID. The store is saved once all lines were added.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("quantize", false, "Quantize vectors of a new store (overrides config)")
	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	quantize := a.cfg.Quantize
	if cmd.Flags().Changed("quantize") {
		quantize, _ = cmd.Flags().GetBool("quantize")
	}

	store, err := a.loadHeap(a.cfg.Store, true, pocketvec.WithQuantization(quantize))
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	n, err := a.importLines(store, in)
	if err != nil {
		return err
	}

	key := a.key()
	if err := store.Save(a.cfg.Store, key); err != nil {
		return fmt.Errorf("save %s: %w", a.cfg.Store, err)
	}

	report := importReport{
		Store:     a.cfg.Store,
		Imported:  n,
		Count:     store.Len(),
		Dim:       store.Dim(),
		Quantized: store.Quantized(),
		Encrypted: key != "",
	}

	if a.asJSON {
		return a.writeJSON(cmd, report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d vectors into %s (%d total, dim %d)\n",
		report.Imported, report.Store, report.Count, report.Dim)
	return nil
}

func (a *app) importLines(store *pocketvec.HeapStore, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n, line := 0, 0
	for scanner.Scan() {
		line++

		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec importRecord
		if err := a.codec.Unmarshal(raw, &rec); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}

		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}

		if err := store.Add(rec.ID, rec.Vector); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}

	if err := scanner.Err(); err != nil {
		return n, err
	}

	return n, nil
}
