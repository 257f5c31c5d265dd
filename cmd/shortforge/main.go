package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	os.Exit(exitCode(newRootCommand().Execute()))
}

// exitCode maps a command error to the process status: 2 for failed health
// checks so scripts can tell them apart from usage errors.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUnhealthy):
		fmt.Fprintln(os.Stderr, err)
		return 2
	case errors.Is(err, context.Canceled):
		return 1
	}
	fmt.Fprintln(os.Stderr, err)
	return 1
}
