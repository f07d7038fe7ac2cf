package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DatabaseURL    string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	AdminUsername  string
	AdminPassword  string
	Port           string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		DBName:         getEnvOrDefault("DB_NAME", "pharmacy"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", "your-secret-key-change-in-production"),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 24, time.Hour),
		AdminUsername:  getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:  getEnvOrDefault("ADMIN_PASSWORD", "admin123"),
		Port:           getEnvOrDefault("PORT", "8080"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
