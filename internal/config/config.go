package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "ENROLLWALL_"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort string
	DBDriver   string
	DBURL      string
	ResetDB    bool
	RedisAddr  string
	RedisDB    int
	RedisPass  string
	AMQPURL    string
	BcryptCost int
	LogLevel   string

	// StrictTerminalStatus rejects complete/drop on enrollments that are
	// already completed or dropped.
	StrictTerminalStatus bool

	SwaggerHost string
}

// Load builds Config from the environment, reading a .env file first when present.
func Load() *Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds Config from the current environment with sensible defaults.
func FromEnv() *Config {
	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DBDriver:             strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBURL:                getEnv("DB_URL", "enrollwall.db"),
		ResetDB:              getEnvBool("RESET_DB", false),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisPass:            getEnv("REDIS_PASSWORD", ""),
		AMQPURL:              getEnv("AMQP_URL", ""),
		BcryptCost:           getEnvInt("BCRYPT_COST", 10),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		StrictTerminalStatus: getEnvBool("STRICT_TERMINAL_STATUS", false),
		SwaggerHost:          getEnv("SWAGGER_HOST", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(envPrefix + key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(envPrefix + key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(envPrefix + key); v != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return def
}
