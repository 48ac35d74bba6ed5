// Command intradaybar sends one IntradayBarRequest and prints the bars as a table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intradaybar/internal/app/di"
	"intradaybar/internal/feature/intradaybar/transport/cli"
	"intradaybar/internal/platform/db"
	"intradaybar/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	envErr := godotenv.Load(".env")
	logging.Setup()
	if envErr != nil {
		slog.Debug(".env not found; using system environment variables")
	}

	opts, err := cli.Parse(os.Args[1:], time.Now(), os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uc, err := di.NewIntradayBarUsecase()
	if err != nil {
		slog.Error("failed to open market data session", "error", err)
		return 1
	}

	var store cli.Store
	if opts.Store {
		gdb, err := db.OpenDB()
		if err != nil {
			slog.Error("failed to open database", "error", err)
			return 1
		}
		rdb := di.NewRedisClient(ctx)
		if rdb != nil {
			defer func() { _ = rdb.Close() }()
		}
		store = di.NewBarRepository(gdb, rdb)
	}

	if err := cli.NewRunner(uc, os.Stdout, store).Run(ctx, opts); err != nil {
		slog.Error("request failed", "error", err)
		return 1
	}
	return 0
}
