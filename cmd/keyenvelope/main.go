//go:build !testcoverage

package main

import (
	"os"

	"github.com/vaultsandbox/keyenvelope/internal/logging"
)

func main() {
	if err := run(os.Args[1:], DefaultConfig()); err != nil {
		fatal("%v", err)
	}
}

func fatal(format string, args ...any) {
	logging.Logger{}.Errorf(format, args...)
	os.Exit(1)
}
