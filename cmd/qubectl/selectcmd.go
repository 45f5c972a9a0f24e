package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xDarkicex/qubed/qube"
)

func newSelectCmd() *cobra.Command {
	var out string
	var mode string
	var consume bool
	var constraints []string

	cmd := &cobra.Command{
		Use:   "select <tree>",
		Short: "keep only the paths matching a set of key=v1,v2 constraints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := readQube(args[0])
			if err != nil {
				return err
			}
			selection, err := parseConstraints(constraints)
			if err != nil {
				return err
			}
			selectMode, err := parseSelectMode(mode)
			if err != nil {
				return err
			}
			start := time.Now()
			result, err := q.Select(selection, qube.WithMode(selectMode), qube.WithConsume(consume))
			metrics.Observe("select", time.Since(start).Seconds(), err)
			if err != nil {
				return err
			}
			return writeQube(result, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	cmd.Flags().StringVar(&mode, "mode", "relaxed", "selection mode: strict, relaxed, or next-level")
	cmd.Flags().BoolVar(&consume, "consume", false, "prune leaves reached with unmatched selection entries")
	cmd.Flags().StringArrayVar(&constraints, "where", nil, "key=v1,v2 constraint, may be repeated")
	return cmd
}

func parseConstraints(constraints []string) (qube.Selection, error) {
	selection := qube.Selection{}
	for _, c := range constraints {
		eq := strings.IndexByte(c, '=')
		if eq < 0 {
			return nil, newCLIError("invalid --where %q: expected key=v1,v2", c)
		}
		key := c[:eq]
		values := strings.Split(c[eq+1:], ",")
		selection[key] = append(selection[key], values...)
	}
	return selection, nil
}

func parseSelectMode(mode string) (qube.SelectMode, error) {
	switch mode {
	case "strict":
		return qube.SelectStrict, nil
	case "relaxed", "":
		return qube.SelectRelaxed, nil
	case "next-level":
		return qube.SelectNextLevel, nil
	default:
		return 0, newCLIError("unknown select mode %q", mode)
	}
}
