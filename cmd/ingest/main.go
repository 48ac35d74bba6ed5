package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intradaybar/internal/app/di"
	"intradaybar/internal/feature/intradaybar/transport/cli"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/cache"
	"intradaybar/internal/platform/db"
	"intradaybar/internal/platform/logging"
	"intradaybar/internal/shared/ratelimiter"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	configPath := fs.String("config", "ingest.yaml", "YAML options file listing securities and event types")
	perMinute := fs.Int("rpm", 30, "maximum requests per minute (0 = unlimited)")
	daily := fs.Bool("daily", false, "keep running and ingest every day at INGEST_HOUR_UTC")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	envErr := godotenv.Load(".env")
	logging.Setup()
	if envErr != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.OpenDB()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}
	rdb := di.NewRedisClient(ctx)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	barsUC, err := di.NewIntradayBarUsecase()
	if err != nil {
		slog.Error("failed to open market data session", "error", err)
		return 1
	}
	iu := usecase.NewIngestUsecase(barsUC, di.NewBarRepository(gdb, rdb), ratelimiter.NewRateLimiter(*perMinute, time.Minute))

	if !*daily {
		if err := ingestOnce(ctx, iu, *configPath); err != nil {
			slog.Error("ingest failed", "error", err)
			return 1
		}
		return 0
	}

	hour := di.IngestHourFromEnv()
	for {
		wait := cache.TimeUntilNext(hour, 0, time.UTC)
		slog.Info("next ingest scheduled", "in", wait.Round(time.Second))
		select {
		case <-ctx.Done():
			slog.Info("ingest stopped")
			return 0
		case <-time.After(wait):
		}
		if err := ingestOnce(ctx, iu, *configPath); err != nil {
			slog.Error("ingest failed", "error", err)
		}
	}
}

// ingestOnce は設定ファイルを読み直して全銘柄を1回取り込みます。
// 日時が未指定の場合は直前の平日を対象にします。
func ingestOnce(ctx context.Context, iu *usecase.IngestUsecase, configPath string) error {
	q, err := cli.QueryFromFile(configPath, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	sum, err := iu.IngestAll(ctx, q)
	if err != nil {
		return err
	}
	slog.Info("ingest finished", "succeeded", sum.Succeeded, "failed", sum.Failed, "bars", sum.Bars)
	if sum.Succeeded == 0 && sum.Failed > 0 {
		return errors.New("every request failed")
	}
	return nil
}
