package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations and ints
// for budgets.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	JWTSecret       string        // secret used to verify JWTs
	StripeSecretKey string        // Stripe API secret key
	BDTPerUSD       int64         // pinned BDT per USD conversion rate
	PaymentTimeout  time.Duration // per-call budget for gateway requests
	PaymentRetries  int           // verification retry budget
	RefCodeAttempts int           // booking reference regeneration budget
	InventoryPolicy string        // when inventory is decremented; only "pay" is supported
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		StripeSecretKey: must("STRIPE_SECRET_KEY"),
		BDTPerUSD:       int64(envInt("BDT_PER_USD", 110)),
		PaymentTimeout:  envDur("PAYMENT_TIMEOUT", 10*time.Second),
		PaymentRetries:  envInt("PAYMENT_RETRIES", 3),
		RefCodeAttempts: envInt("REF_CODE_ATTEMPTS", 10),
		InventoryPolicy: envStr("INVENTORY_DECREMENT_POLICY", "pay"),
	}
	// The only supported policy decrements inventory at payment capture.
	// Rejecting anything else at startup beats silently booking against
	// inventory that was never reserved.
	if cfg.InventoryPolicy != "pay" {
		log.Fatalf("unsupported INVENTORY_DECREMENT_POLICY: %q (only \"pay\" is supported)", cfg.InventoryPolicy)
	}
	if cfg.BDTPerUSD <= 0 {
		log.Fatalf("BDT_PER_USD must be positive, got %d", cfg.BDTPerUSD)
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
