package main

import (
	"fmt"
	"log/slog"
	"os"

	_ "github.com/perzequiel/woki-brain/docs"
)

// @title WokiBrain API
// @version 1.0
// @description Seat discovery and idempotent table allocation for restaurants.
// @host localhost:8080
// @BasePath /
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := newRootCmd(logger).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
