package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Firebase FirebaseConfig
	Billing  BillingConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type FirebaseConfig struct {
	CredentialsPath string
}

type BillingConfig struct {
	// PaymentBaseURL is the base URL of the web-commerce payment service
	// exposing create-checkout and customer-portal.
	PaymentBaseURL string
	// PaymentServiceToken authenticates this service against the payment
	// service.
	PaymentServiceToken string
	// AppStoreProductID is the only product the app-store webhook accepts.
	AppStoreProductID string
	// WebhookRatePerSecond / WebhookBurst bound the public webhook endpoint.
	WebhookRatePerSecond int
	WebhookBurst         int
	// EntitlementTTL is how long a cached entitlement check stays fresh.
	EntitlementTTL time.Duration
}

type AppConfig struct {
	Environment          string
	LogLevel             string
	Version              string
	CORSOrigins          []string
	CORSAllowCredentials bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "bid2bid"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		Billing: BillingConfig{
			PaymentBaseURL:       getEnv("PAYMENT_BASE_URL", ""),
			PaymentServiceToken:  getEnv("PAYMENT_SERVICE_TOKEN", ""),
			AppStoreProductID:    getEnv("APP_STORE_PRODUCT_ID", "io.bid2bid.app.premium.subscription"),
			WebhookRatePerSecond: getEnvAsInt("WEBHOOK_RATE_PER_SECOND", 5),
			WebhookBurst:         getEnvAsInt("WEBHOOK_BURST", 10),
			EntitlementTTL:       time.Duration(getEnvAsInt("ENTITLEMENT_TTL_SECONDS", 60)) * time.Second,
		},
		App: AppConfig{
			Environment:          getEnv("APP_ENV", "development"),
			LogLevel:             getEnv("LOG_LEVEL", "info"),
			Version:              getEnv("APP_VERSION", "1.0.0"),
			CORSOrigins:          []string{getEnv("CORS_ORIGIN", "*")},
			CORSAllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Billing.AppStoreProductID == "" {
		return fmt.Errorf("APP_STORE_PRODUCT_ID is required")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
