package main

import (
	"fmt"

	"github.com/hupe1980/pocketvec/cipher"
	"github.com/spf13/cobra"
)

func NewKeygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Print a random store key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, _ := cmd.Flags().GetInt("length")

			key, err := cipher.GenerateKey(n)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().IntP("length", "l", cipher.DefaultKeyLength, "Key length in characters")
	return cmd
}
