package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/match3/apps/go-server/assets"
	"github.com/robalobadob/match3/apps/go-server/internal/auth"
	"github.com/robalobadob/match3/apps/go-server/internal/httpserver"
	"github.com/robalobadob/match3/apps/go-server/internal/records"
	"github.com/robalobadob/match3/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := records.Open(getEnv("DB_PATH", "./data/app.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := records.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		days = 14
	}
	prod := getEnv("NODE_ENV", "development") == "production"
	secret := getEnv("JWT_SECRET", "dev_secret_change_me")
	if prod && secret == "dev_secret_change_me" {
		log.Warn().Msg("JWT_SECRET is the development default")
	}

	idle, err := time.ParseDuration(getEnv("GAME_IDLE_TTL", "2h"))
	if err != nil {
		log.Warn().Err(err).Msg("bad GAME_IDLE_TTL, using 2h")
		idle = 2 * time.Hour
	}

	srv := httpserver.New(store.NewMemoryStore(), records.NewStore(db), httpserver.Config{
		Auth: auth.Config{
			Secret:     []byte(secret),
			TTL:        time.Duration(days) * 24 * time.Hour,
			CookieName: getEnv("COOKIE_NAME", "match3_token"),
			Secure:     prod,
		},
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		IdleTTL:      idle,
	})

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
