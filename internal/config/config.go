package config

import (
	"log"
	"os"
	"strconv"

	"storefront-analytics/internal/analytics"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppEnv     string

	TopProductsLimit    int
	RecommendationLimit int
	ChurnWindowDays     int
	// MetricsTextfile is where batch metrics are written for the
	// node exporter textfile collector. Empty disables it.
	MetricsTextfile string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:              os.Getenv("DB_HOST"),
		DBUser:              os.Getenv("DB_USER"),
		DBPassword:          os.Getenv("DB_PASSWORD"),
		DBName:              os.Getenv("DB_NAME"),
		DBPort:              os.Getenv("DB_PORT"),
		AppEnv:              os.Getenv("APP_ENV"),
		TopProductsLimit:    intFromEnv("ANALYTICS_TOP_LIMIT", analytics.DefaultTopLimit),
		RecommendationLimit: intFromEnv("ANALYTICS_RECOMMENDATION_LIMIT", analytics.DefaultRecommendationLimit),
		ChurnWindowDays:     intFromEnv("ANALYTICS_CHURN_DAYS", analytics.DefaultChurnWindowDays),
		MetricsTextfile:     os.Getenv("METRICS_TEXTFILE"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

// intFromEnv falls back to def when the variable is unset or not a
// positive integer.
func intFromEnv(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
