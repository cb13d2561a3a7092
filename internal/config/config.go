package config

import (
	"os"
	"time"
)

type Config struct {
	ServiceName string
	Env         string
	Addr        string

	MongoURI string
	MongoDB  string

	JWTSecret []byte
	TokenTTL  time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	Currency          string

	SeedDemoData bool
}

func Load() *Config {
	return &Config{
		ServiceName: getenvDefault("SERVICE_NAME", "storefront"),
		Env:         getenvDefault("ENV", "dev"),
		Addr:        ":" + getenvDefault("PORT", "8080"),

		// Empty URI selects the in-memory store, for local dev and tests.
		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getenvDefault("MONGO_DB", "storefront"),

		JWTSecret: []byte(getenvDefault("JWT_SECRET", "dev-secret")),
		TokenTTL:  7 * 24 * time.Hour,

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          getenvDefault("CURRENCY", "INR"),

		SeedDemoData: os.Getenv("SEED_DEMO_DATA") == "true",
	}
}

// UseRealGateway reports whether both razorpay credentials are present. The
// fake gateway is selected otherwise, at startup, never per request.
func (c *Config) UseRealGateway() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
