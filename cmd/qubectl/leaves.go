package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newLeavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaves <tree>",
		Short: "print every leaf path together with its gathered metadata, one JSON object per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQube(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, leaf := range q.Leaves() {
				if err := enc.Encode(leaf); err != nil {
					return err
				}
			}
			return nil
		},
	}
	return cmd
}
