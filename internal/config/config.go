package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	APIBaseURL        string
	Env               string
	LogLevel          string
	HTTPTimeout       time.Duration
	RazorpayKeyID     string
	MerchantName      string
	MerchantLogoURL   string
	ThemeColor        string
	InspectionFee     int // paise
	InspectionTime    string
	CallbackAddr      string
	CheckoutTimeout   time.Duration
	AllowFakePayments bool
	SessionBackend    string
	SessionFile       string
	RedisAddr         string
	RedisPassword     string
	RedisTLS          bool
	ReloadDelay       time.Duration
	AnimationDuration time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		APIBaseURL:        strings.TrimRight(getEnv("CARVALUE_API_URL", "https://carvalueai-6.onrender.com"), "/"),
		Env:               getEnv("ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:       getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		MerchantName:      getEnv("MERCHANT_NAME", "CarValueAI"),
		MerchantLogoURL:   getEnv("MERCHANT_LOGO_URL", ""),
		ThemeColor:        getEnv("THEME_COLOR", "#2563eb"),
		InspectionFee:     getEnvAsInt("INSPECTION_FEE_PAISE", 50000),
		InspectionTime:    getEnv("INSPECTION_TIME", "10:00 AM"),
		CallbackAddr:      getEnv("CALLBACK_ADDR", "127.0.0.1:7789"),
		CheckoutTimeout:   getEnvAsDuration("CHECKOUT_TIMEOUT", 10*time.Minute),
		AllowFakePayments: getEnvAsBool("ALLOW_FAKE_PAYMENTS", false),
		SessionBackend:    strings.ToLower(strings.TrimSpace(getEnv("SESSION_BACKEND", "file"))),
		SessionFile:       getEnv("SESSION_FILE", defaultSessionFile()),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisTLS:          getEnvAsBool("REDIS_TLS", false),
		ReloadDelay:       getEnvAsDuration("RELOAD_DELAY", 2*time.Second),
		AnimationDuration: getEnvAsDuration("ANIMATION_DURATION", 1500*time.Millisecond),
	}
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".carvalue-session.json"
	}
	return dir + "/carvalue/session.json"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
