package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB     DBConfig
	JWT    JWTConfig
	Server ServerConfig
	Artsy  ArtsyConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret            string
	ExpirationMinutes int
}

type ServerConfig struct {
	Port string
}

type ArtsyConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

func Load() *Config {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load()

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "artsearch"),
			Password: getEnv("DB_PASSWORD", "artsearch_secret"),
			Name:     getEnv("DB_NAME", "artsearch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "change-me-in-production"),
			ExpirationMinutes: getEnvAsInt("JWT_EXPIRATION_MINUTES", 60),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Artsy: ArtsyConfig{
			BaseURL:      getEnv("ARTSY_BASE_URL", "https://api.artsy.net"),
			ClientID:     getEnv("ARTSY_CLIENT_ID", ""),
			ClientSecret: getEnv("ARTSY_CLIENT_SECRET", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
