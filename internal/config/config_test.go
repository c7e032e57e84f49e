package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Offer.MinRatio != 0.5 || cfg.Offer.MaxRatio != 1.0 {
		t.Fatalf("ratio bounds = [%v, %v], want [0.5, 1.0]", cfg.Offer.MinRatio, cfg.Offer.MaxRatio)
	}
	if cfg.Offer.Supersede != SupersedeIgnore {
		t.Fatalf("supersede = %q, want ignore", cfg.Offer.Supersede)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("MARKET_OFFER_MIN_RATIO", "0.7")
	t.Setenv("MARKET_OFFER_MAX_RATIO", "1.2")
	t.Setenv("MARKET_OFFER_SUPERSEDE_POLICY", "auto-reject")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Offer.MinRatio != 0.7 || cfg.Offer.MaxRatio != 1.2 {
		t.Fatalf("ratio bounds = [%v, %v]", cfg.Offer.MinRatio, cfg.Offer.MaxRatio)
	}
	if cfg.Offer.Supersede != SupersedeAutoReject {
		t.Fatalf("supersede = %q, want auto-reject", cfg.Offer.Supersede)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"unparsable ratio", "MARKET_OFFER_MIN_RATIO", "half"},
		{"zero min ratio", "MARKET_OFFER_MIN_RATIO", "0"},
		{"min above max", "MARKET_OFFER_MIN_RATIO", "1.5"},
		{"unknown policy", "MARKET_OFFER_SUPERSEDE_POLICY", "cascade"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("LoadConfig accepted %s=%s", tc.key, tc.value)
			}
		})
	}
}
