package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds the runtime configuration read from the environment.
type Settings struct {
	Port        string
	DatabaseURL string

	// Engine defaults applied to every session the directory creates.
	MinPlayers  int
	MaxPlayers  int
	SeedCards   bool
	FourCorners bool

	// Directory policy.
	CallInterval  time.Duration
	SweepInterval time.Duration
	WaitingGrace  time.Duration
	ActiveGrace   time.Duration
}

// Load reads .env (if present) and the environment. DATABASE_URL is
// required; everything else has defaults.
func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}

	return Settings{
		Port:          envString("PORT", "4000"),
		DatabaseURL:   dsn,
		MinPlayers:    envInt("MIN_PLAYERS", 2),
		MaxPlayers:    envInt("MAX_PLAYERS", 100),
		SeedCards:     envBool("SEED_CARDS", false),
		FourCorners:   envBool("FOUR_CORNERS", false),
		CallInterval:  envDuration("CALL_INTERVAL", 5*time.Second),
		SweepInterval: envDuration("SWEEP_INTERVAL", 10*time.Second),
		WaitingGrace:  envDuration("WAITING_GRACE", 5*time.Minute),
		ActiveGrace:   envDuration("ACTIVE_GRACE", 2*time.Minute),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
