package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"sociomate/cli"
	"sociomate/logging"
)

func main() {
	// Failures are already reported on stderr; logs are opt-in.
	level := os.Getenv("SOCIOMATE_LOG_LEVEL")
	if level == "" {
		level = "disabled"
	}
	logging.Init(logging.Config{Level: level, Format: "console", Output: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
