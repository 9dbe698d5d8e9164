package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	apperrors "github.com/jrsteele09/go-admin-client/internal/errors"
)

const (
	exitOK = iota
	exitError
	exitSecurityViolation
	exitSessionInvalid
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	stop()
	os.Exit(exitCode(err))
}

func run(ctx context.Context) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	return newRootCmd().ExecuteContext(ctx)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case apperrors.Is(err, apperrors.ErrSecurityViolation):
		fmt.Fprintf(os.Stderr, "Blocked: %v\n", err)
		return exitSecurityViolation
	case apperrors.Is(err, apperrors.ErrSessionInvalid):
		fmt.Fprintln(os.Stderr, "Session expired, run 'adminctl login' again")
		return exitSessionInvalid
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}
}
