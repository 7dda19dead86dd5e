package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	FirebaseProject string
	Environment     string

	StripeSecretKey string
	StripeMinAmount float64 // USD, gateway-enforced minimum charge

	ShopifyDomain    string
	ShopifyToken     string
	CatalogCacheTTL  int64 // seconds
	TaxRate          float64
	ShippingFlatRate float64

	FanoutMaxAttempts int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		Environment:     getEnv("ENVIRONMENT", "development"),

		StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
		StripeMinAmount: getEnvAsFloat("STRIPE_MIN_AMOUNT", 0.50),

		ShopifyDomain:    getEnv("SHOPIFY_DOMAIN", ""),
		ShopifyToken:     getEnv("SHOPIFY_STOREFRONT_TOKEN", ""),
		CatalogCacheTTL:  getEnvAsInt64("CATALOG_CACHE_TTL", 120), // 2 minutes
		TaxRate:          getEnvAsFloat("TAX_RATE", 0.075),
		ShippingFlatRate: getEnvAsFloat("SHIPPING_FLAT_RATE", 0),

		FanoutMaxAttempts: int(getEnvAsInt64("FANOUT_MAX_ATTEMPTS", 3)),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatValue, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return floatValue
		}
	}
	return defaultValue
}
