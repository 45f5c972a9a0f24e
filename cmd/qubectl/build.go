package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/xDarkicex/qubed/qube"
)

func newFromDatacubeCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "from-datacube <request.json>",
		Short: "build a dense linear qube from a flat key/value(s) request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var fields map[string]interface{}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return newCLIError("parse %s: %v", args[0], err)
			}
			datacube := make(map[string]qube.DatacubeValue, len(fields))
			for k, v := range fields {
				datacube[k], err = datacubeValueFromJSON(k, v)
				if err != nil {
					return err
				}
			}
			q, err := qube.FromDatacube(datacube)
			if err != nil {
				return err
			}
			return writeQube(q, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	return cmd
}

func datacubeValueFromJSON(key string, v interface{}) (qube.DatacubeValue, error) {
	switch vv := v.(type) {
	case string:
		return vv, nil
	case []interface{}:
		vals := make([]string, len(vv))
		for i, e := range vv {
			s, ok := e.(string)
			if !ok {
				return nil, newCLIError("field %q: list values must be strings", key)
			}
			vals[i] = s
		}
		return vals, nil
	default:
		return nil, newCLIError("field %q: expected a string or list of strings", key)
	}
}

func newFromDictCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "from-dict <nested.json>",
		Short: "build a qube from nested maps keyed by \"key=v1/v2/...\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var nested map[string]interface{}
			if err := json.Unmarshal(raw, &nested); err != nil {
				return newCLIError("parse %s: %v", args[0], err)
			}
			q, err := qube.FromNestedMap(nested)
			if err != nil {
				return err
			}
			return writeQube(q, out)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output path (\"-\" for stdout)")
	return cmd
}
