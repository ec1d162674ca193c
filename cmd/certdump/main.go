package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacoelho/certq/internal/dump/config"
	"github.com/jacoelho/certq/internal/dump/inspect"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		if errors.Is(err, config.ErrHelp) {
			fmt.Fprintln(os.Stdout, config.Usage())
			return 0
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s\n", err, config.Usage())
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return inspect.Run(ctx, cfg, os.Stdout, os.Stderr)
}
