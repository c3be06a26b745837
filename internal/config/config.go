package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	// Logger is used only while bootstrapping, before a Config exists.
	Logger = logrus.New()
)

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, once. Variables already set in the process win.
func LoadEnv() {
	once.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				Logger.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			Logger.Warnf("Error loading .env file: %v", err)
			return
		}
		Logger.Debugf("Loaded environment variables from %s", envFile)
	})
}

// BootstrapLogLevel applies LOG_LEVEL (or BUDGET_LOG_LEVEL) to the bootstrap
// logger and returns the parsed level.
func BootstrapLogLevel() logrus.Level {
	levelStr := GetEnv("BUDGET_LOG_LEVEL", GetEnv("LOG_LEVEL", "info"))
	level, err := logrus.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
	return level
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
