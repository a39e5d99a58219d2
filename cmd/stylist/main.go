package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitCodeOK       = 0
	exitCodeError    = 1
	exitCodeBadInput = 3
)

// exitError carries a process exit code alongside the error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func badInput(format string, args ...any) error {
	return &exitError{code: exitCodeBadInput, err: fmt.Errorf(format, args...)}
}

func main() {
	root := &cobra.Command{
		Use:           "stylist",
		Short:         "Personalized outfit, hair and accessory recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRecommendCmd(), newPromptCmd(), newFallbackCmd(), newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitCodeError)
	}
}
