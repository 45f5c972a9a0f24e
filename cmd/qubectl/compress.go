package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newCompressCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compress <tree>",
		Short: "merge structurally identical sibling subtrees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQube(args[0])
			if err != nil {
				return err
			}
			before := q.NNodes()
			start := time.Now()
			compressed := q.Compress()
			elapsed := time.Since(start)
			after := compressed.NNodes()
			metrics.Observe("compress", elapsed.Seconds(), nil)
			if before > 0 {
				metrics.CompressionRatio.Observe(float64(before) / float64(after))
			}
			cmd.PrintErrf("nodes: %d -> %d\n", before, after)
			return writeQube(compressed, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "convert-dtypes <tree>",
		Short: "re-infer every value group's dtype from its own content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQube(args[0])
			if err != nil {
				return err
			}
			converted, err := q.ConvertDtypes()
			if err != nil {
				return err
			}
			return writeQube(converted, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	return cmd
}
