package main

import (
	"os"
	"strings"

	"github.com/xDarkicex/qubed/qube"
)

// readQube loads a tree from path, sniffing format from its extension:
// ".json" parses the wire JSON format, anything else is treated as the
// ASCII tree format.
func readQube(path string) (*qube.Qube, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".json") {
		return qube.FromJSONQube(data)
	}
	return qube.FromASCIIQube(string(data))
}

// writeQube renders q in the same format readQube would expect for path,
// printing to stdout when path is "-".
func writeQube(q *qube.Qube, path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".json") {
		data, err = q.ToJSON()
	} else {
		data = []byte(q.String())
	}
	if err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
