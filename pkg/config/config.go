// Package config reads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Store     StoreConfig
	Detection DetectionConfig
	Logging   LoggingConfig
}

type StoreConfig struct {
	Path string
}

// DetectionConfig carries every detector threshold. The duplicate amount
// precision and the recurring amount band are deliberately separate knobs.
type DetectionConfig struct {
	RecurringAmountBand float64 // relative tolerance around group mean
	HighAmountRatio     float64 // warning threshold vs merchant mean
	CriticalRatio       float64 // critical threshold vs merchant mean
	SpikeRatio          float64 // day total vs average daily total
	DuplicatePlaces     int     // decimal places for duplicate amount keys
	ForecastFloor       float64 // balance below which forecasts warn
}

type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables with sensible
// defaults; no variable is required.
func Load() *Config {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	return &Config{
		Store: StoreConfig{
			Path: getEnv("LEDGERLENS_DB", "ledgerlens.db"),
		},
		Detection: DetectionConfig{
			RecurringAmountBand: getEnvAsFloat("DETECT_RECURRING_AMOUNT_BAND", 0.05),
			HighAmountRatio:     getEnvAsFloat("DETECT_HIGH_AMOUNT_RATIO", 3),
			CriticalRatio:       getEnvAsFloat("DETECT_CRITICAL_RATIO", 5),
			SpikeRatio:          getEnvAsFloat("DETECT_SPIKE_RATIO", 2),
			DuplicatePlaces:     getEnvAsInt("DETECT_DUPLICATE_PLACES", 2),
			ForecastFloor:       getEnvAsFloat("FORECAST_FLOOR", 1000),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}
