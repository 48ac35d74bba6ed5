// Command token issues a bearer token for an API client of the bar endpoints.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	jwtmw "intradaybar/internal/platform/jwt"
	"intradaybar/internal/platform/logging"
)

func main() {
	clientID := flag.String("client", "", "client id stored as the token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load(".env")
	logging.Setup()

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*clientID)
	if err != nil {
		slog.Error("failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
