package main

import (
	"errors"
	"os"

	"github.com/reget/reget/internal/cli"
	"github.com/reget/reget/internal/dispatch"
)

// Exit codes: 0 on clean completion, 130 when the run was interrupted,
// 1 for every other error.
func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		if errors.Is(err, dispatch.ErrAborted) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}
