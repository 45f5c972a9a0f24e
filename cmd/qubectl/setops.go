package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xDarkicex/qubed/internal/logging"
	"github.com/xDarkicex/qubed/qube"
)

func newUnionCmd() *cobra.Command    { return newSetOpCmd("union", (*qube.Qube).Union) }
func newIntersectCmd() *cobra.Command { return newSetOpCmd("intersect", (*qube.Qube).Intersect) }
func newDifferenceCmd() *cobra.Command {
	return newSetOpCmd("difference", (*qube.Qube).Difference)
}
func newSymmetricDifferenceCmd() *cobra.Command {
	return newSetOpCmd("symmetric-difference", (*qube.Qube).SymmetricDifference)
}

func newSetOpCmd(name string, op func(*qube.Qube, *qube.Qube) (*qube.Qube, error)) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   name + " <left> <right>",
		Short: fmt.Sprintf("compute the %s of two qube trees", name),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readQube(args[0])
			if err != nil {
				return err
			}
			right, err := readQube(args[1])
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := op(left, right)
			elapsed := time.Since(start)
			logging.Sugar().Debugw(name, "elapsed", elapsed, "err", err)
			metrics.Observe(metricsKindFor(name), elapsed.Seconds(), err)
			if err != nil {
				return err
			}
			return writeQube(result, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	return cmd
}
