package main

import (
	"fmt"

	"github.com/hupe1980/pocketvec"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Find the nearest vectors by cosine similarity",
		Long: `Search the growable store, or one or more flat stores given with --flat.
Flat stores are searched concurrently and their rankings merged.`,
		Args: cobra.NoArgs,
		RunE: runSearch,
	}

	cmd.Flags().StringP("vector", "v", "", "Query vector as comma separated floats")
	cmd.Flags().IntP("number", "n", 10, "Maximum results")
	cmd.Flags().StringSlice("flat", nil, "Flat store to search (repeatable)")
	cmd.Flags().Bool("verify", false, "Verify flat store checksums before searching")
	_ = cmd.MarkFlagRequired("vector")
	return cmd
}

func runSearch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("vector")
	limit, _ := cmd.Flags().GetInt("number")
	flats, _ := cmd.Flags().GetStringSlice("flat")
	verify, _ := cmd.Flags().GetBool("verify")

	query, err := parseVector(raw)
	if err != nil {
		return err
	}

	var results []pocketvec.SearchResult
	if len(flats) > 0 {
		results, err = a.searchFlats(cmd, flats, query, limit, verify)
	} else {
		results, err = a.searchHeap(query, limit)
	}
	if err != nil {
		return err
	}

	if a.asJSON {
		return a.writeJSON(cmd, results)
	}

	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s\n", r.Score, r.ID)
	}
	return nil
}

func (a *app) searchHeap(query []float32, limit int) ([]pocketvec.SearchResult, error) {
	store, err := a.loadHeap(a.cfg.Store, false)
	if err != nil {
		return nil, err
	}

	return store.Search(query, limit)
}

func (a *app) searchFlats(cmd *cobra.Command, paths []string, query []float32, limit int, verify bool) ([]pocketvec.SearchResult, error) {
	lists := make([][]pocketvec.SearchResult, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			store, err := pocketvec.OpenFlat(path, a.options(pocketvec.WithVerifyChecksum(verify))...)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer store.Close()

			res, err := store.Search(query, limit)
			if err != nil {
				return fmt.Errorf("search %s: %w", path, err)
			}

			lists[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pocketvec.MergeResults(limit, lists...), nil
}
