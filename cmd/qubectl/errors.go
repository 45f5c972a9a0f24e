package main

import "fmt"

func newCLIError(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
