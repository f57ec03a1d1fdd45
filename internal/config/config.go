package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Slot backends for cart and quote persistence.
const (
	SlotSQL    = "sql"
	SlotFile   = "file"
	SlotMemory = "memory"
)

type Config struct {
	Port                string
	DBDSN               string
	LogFile             string
	LogLevel            string
	Env                 string
	SlotBackend         string
	SlotDir             string
	LoginRateMax        int
	APIRateMax          int
	SessionCookieSecure bool
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	// .env is optional
	_ = godotenv.Load()

	cfg := Config{
		Port:                getEnv("PORT", "8081"),
		DBDSN:               getEnv("DB_DSN", "partsstore.db"),
		LogFile:             getEnv("LOG_FILE", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		Env:                 getEnv("APP_ENV", "development"),
		SlotBackend:         getEnv("SLOT_BACKEND", SlotSQL),
		SlotDir:             getEnv("SLOT_DIR", "./data/slots"),
		LoginRateMax:        getEnvAsInt("LOGIN_RATE_MAX", 5),
		APIRateMax:          getEnvAsInt("API_RATE_MAX", 60),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", false),
	}
	switch cfg.SlotBackend {
	case SlotSQL, SlotFile, SlotMemory:
	default:
		cfg.SlotBackend = SlotSQL
	}
	return cfg
}

// Fields renders the config for a startup log line.
func (c Config) Fields() []zap.Field {
	return []zap.Field{
		zap.String("port", c.Port),
		zap.String("db_dsn", c.DBDSN),
		zap.String("log_file", c.LogFile),
		zap.String("log_level", c.LogLevel),
		zap.String("environment", c.Env),
		zap.String("slot_backend", c.SlotBackend),
		zap.String("slot_dir", c.SlotDir),
		zap.Int("login_rate_max", c.LoginRateMax),
		zap.Int("api_rate_max", c.APIRateMax),
		zap.Bool("session_cookie_secure", c.SessionCookieSecure),
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
