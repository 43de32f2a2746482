// Command phishscan scores URLs for phishing risk, either one-shot from the
// command line or as an HTTP service.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/raysh454/phishscan/internal/model"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes bad input from a guard rejection so scripts can
// tell them apart.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrInvalidInput):
		return 2
	case errors.Is(err, model.ErrSSRFRisk), errors.Is(err, model.ErrResolutionFailed):
		return 3
	default:
		return 1
	}
}
