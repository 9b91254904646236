package config

import (
	"os"
	"path/filepath"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	Port string

	// DatabaseURL selects postgres when set; otherwise a local sqlite file
	// at DBPath is used.
	DatabaseURL string
	DBPath      string

	// APIKey is the shared secret checked against the X-API-Key header.
	// When empty no header is required on any endpoint.
	APIKey string

	RedisAddr     string
	CacheSyncCron string

	LogLevel  string
	LogFormat string
}

func LoadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBPath:        getEnv("DB_PATH", ".data/agridocs.db"),
		APIKey:        os.Getenv("API_KEY"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		CacheSyncCron: getEnv("CACHE_SYNC_CRON", "@every 1m"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// GetDb opens the configured database. TranslateError makes gorm surface
// unique-constraint violations as gorm.ErrDuplicatedKey on both drivers,
// which the store relies on for dedupe.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	if cnf.DatabaseURL != "" {
		dialector = postgres.Open(cnf.DatabaseURL)
	} else {
		if err := os.MkdirAll(filepath.Dir(cnf.DBPath), os.ModePerm); err != nil {
			logrus.Fatalf("failed to create database directory: %v", err)
		}
		dialector = sqlite.Open(cnf.DBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	return db
}

func SetupLogger(cnf *Config) {
	level, err := logrus.ParseLevel(cnf.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cnf.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
