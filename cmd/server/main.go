package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intradaybar/internal/app/di"
	"intradaybar/internal/app/router"
	barhandler "intradaybar/internal/feature/intradaybar/transport/handler"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/db"
	platformhandler "intradaybar/internal/platform/http/handler"
	jwtmw "intradaybar/internal/platform/jwt"
	"intradaybar/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .envを読み込む
	envErr := godotenv.Load(".env")
	logging.Setup()
	if envErr != nil {
		slog.Info(".env not found; using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.OpenDB()
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return 1
	}

	// Redis（接続できなければキャッシュなし）
	rdb := di.NewRedisClient(ctx)
	if rdb != nil {
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	barsUC, err := di.NewIntradayBarUsecase()
	if err != nil {
		slog.Error("failed to open market data session", "error", err)
		return 1
	}
	historyUC := usecase.NewHistoryUsecase(di.NewBarRepository(gdb, rdb))

	// Handler
	barsH := barhandler.NewBarHandler(barsUC, historyUC)
	healthH := platformhandler.NewHealthHandler(di.NewHealthChecks(gdb, rdb))

	// ルータ生成
	r := router.NewRouter(healthH, barsH)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		slog.Warn("JWT_SECRET is not set; authenticated routes will return 500")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		slog.Error("failed to listen", "port", port, "error", err)
		return 1
	}

	slog.Info("listening", "port", port)
	if err := serve(ctx, srv, ln, 10*time.Second); err != nil {
		slog.Error("server failed", "error", err)
		return 1
	}
	slog.Info("server stopped")
	return 0
}

// serve は ctx がキャンセルされるまで ln で待ち受けます。
// キャンセル後は処理中のリクエストが終わる（または timeout を過ぎる）まで戻りません。
func serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-done; err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
