package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                  string
	AllowedOrigin         string
	DatabaseURL           string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int
	RecapTTLSeconds       int
	DedupWindowMillis     int
	AuthSecret            string
	AccessTokenTTLMinutes int
	SupervisorPIN         string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	recapTTL, err := strconv.Atoi(getEnv("RECAP_TTL_SECONDS", "30"))
	if err != nil || recapTTL < 1 {
		recapTTL = 30
	}
	dedupWindow, err := strconv.Atoi(getEnv("DEDUP_WINDOW_MS", "2000"))
	if err != nil || dedupWindow < 1 {
		dedupWindow = 2000
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "480"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 480
	}

	cfg := Config{
		Port:                  getEnv("PORT", "8080"),
		AllowedOrigin:         getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               redisDB,
		RecapTTLSeconds:       recapTTL,
		DedupWindowMillis:     dedupWindow,
		AuthSecret:            strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AccessTokenTTLMinutes: tokenTTL,
		SupervisorPIN:         strings.TrimSpace(os.Getenv("SUPERVISOR_PIN")),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
