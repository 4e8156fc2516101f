package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Port          string
	LogLevel      string
	HTTPTimeout   time.Duration
	RetryAttempts int

	YouTubeAPIKey string
	YouTubeAPIURL string
	KajabiAPIKey  string
	KajabiAPIURL  string
	CalComAPIKey  string
	CalComAPIURL  string

	OpenAIAPIKey string
	OpenAIAPIURL string
	OpenAIModel  string

	SinkURL    string
	SinkSecret string

	MockSeed   int64
	MockMonths int
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	timeout, _ := time.ParseDuration(getEnv("HTTP_TIMEOUT", "30s"))
	retryAttempts, _ := strconv.Atoi(getEnv("RETRY_ATTEMPTS", "3"))
	mockSeed, _ := strconv.ParseInt(getEnv("MOCK_SEED", "42"), 10, 64)
	mockMonths, _ := strconv.Atoi(getEnv("MOCK_MONTHS", "12"))

	return &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:   timeout,
		RetryAttempts: retryAttempts,

		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		YouTubeAPIURL: getEnv("YOUTUBE_API_URL", "https://www.googleapis.com/youtube/v3"),
		KajabiAPIKey:  os.Getenv("KAJABI_API_KEY"),
		KajabiAPIURL:  getEnv("KAJABI_API_URL", "https://api.kajabi.com/v1"),
		CalComAPIKey:  os.Getenv("CALCOM_API_KEY"),
		CalComAPIURL:  getEnv("CALCOM_API_URL", "https://api.cal.com/v1"),

		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIURL: getEnv("OPENAI_API_URL", "https://api.openai.com/v1"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		SinkURL:    os.Getenv("SINK_URL"),
		SinkSecret: getEnv("SINK_SECRET", "coachmetrics_secret_example"),

		MockSeed:   mockSeed,
		MockMonths: mockMonths,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
