package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/guessentence/go-server/internal/game"
	"github.com/guessentence/go-server/internal/httpserver"
	"github.com/guessentence/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("DB_PATH", "./data/game.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	st := store.NewSQLite(db)
	if err := seedSentences(context.Background(), st); err != nil {
		log.Fatal().Err(err).Msg("seed sentence pool")
	}

	cfg := game.Config{
		MatchDuration:  time.Duration(envInt("MATCH_SECONDS", 60)) * time.Second,
		TimeoutPenalty: envInt("TIMEOUT_PENALTY", 20),
		WinBonus:       envInt("WIN_BONUS", 100),
		GraceWindow:    time.Duration(envInt("GRACE_SECONDS", 300)) * time.Second,
	}
	eng := game.NewEngine(st, cfg)

	srv := httpserver.New(st, eng)
	port := getEnv("PORT", "3002")
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

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
