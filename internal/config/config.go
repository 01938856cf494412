package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port          string
	DatabaseURL   string
	TimerSeconds  int    // per-match countdown budget
	RandomWordURL string // empty = package default
	DictionaryURL string // empty = package default
}

func Load() Config {
	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		TimerSeconds:  getEnvInt("TIMER_SECONDS", 300),
		RandomWordURL: os.Getenv("RANDOM_WORD_URL"),
		DictionaryURL: os.Getenv("DICTIONARY_URL"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
