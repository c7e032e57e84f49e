package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// SupersedePolicy decides what happens to the remaining pending offers in a
// thread when one offer is accepted.
type SupersedePolicy string

const (
	// SupersedeIgnore leaves sibling offers Pending; the settled thread
	// makes them non-actionable.
	SupersedeIgnore SupersedePolicy = "ignore"
	// SupersedeAutoReject flips sibling offers to Rejected at accept time.
	SupersedeAutoReject SupersedePolicy = "auto-reject"
)

// OfferPolicy bounds offer amounts relative to the listing price and names
// the supersede behavior. Range bounds are deployment policy, not law.
type OfferPolicy struct {
	MinRatio  float64         `env:"MARKET_OFFER_MIN_RATIO"`
	MaxRatio  float64         `env:"MARKET_OFFER_MAX_RATIO"`
	Supersede SupersedePolicy `env:"MARKET_OFFER_SUPERSEDE_POLICY"`
}

type Config struct {
	Offer OfferPolicy
}

// LoadConfig reads an optional .env file, then the environment. Defaults
// allow offers between 50% and 100% of the list price and leave superseded
// offers untouched.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	minRatioStr := getEnvOrDefault("MARKET_OFFER_MIN_RATIO", "0.5")
	minRatio, err := strconv.ParseFloat(minRatioStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_OFFER_MIN_RATIO: %w", err)
	}
	cfg.Offer.MinRatio = minRatio

	maxRatioStr := getEnvOrDefault("MARKET_OFFER_MAX_RATIO", "1.0")
	maxRatio, err := strconv.ParseFloat(maxRatioStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_OFFER_MAX_RATIO: %w", err)
	}
	cfg.Offer.MaxRatio = maxRatio

	if cfg.Offer.MinRatio <= 0 || cfg.Offer.MinRatio > cfg.Offer.MaxRatio {
		return nil, fmt.Errorf("offer ratio bounds out of order: min=%v max=%v", cfg.Offer.MinRatio, cfg.Offer.MaxRatio)
	}

	policy := SupersedePolicy(getEnvOrDefault("MARKET_OFFER_SUPERSEDE_POLICY", string(SupersedeIgnore)))
	if policy != SupersedeIgnore && policy != SupersedeAutoReject {
		return nil, fmt.Errorf("invalid MARKET_OFFER_SUPERSEDE_POLICY: %q", policy)
	}
	cfg.Offer.Supersede = policy

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
