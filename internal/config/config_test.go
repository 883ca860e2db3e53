package config

import "testing"

func TestLoadIncludesDefaults(t *testing.T) {
	t.Setenv("NATS_SUBJECT", "")
	t.Setenv("VISION_MODEL", "")
	t.Setenv("VISION_TIMEOUT_SECONDS", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")

	cfg := Load()
	if cfg.NATSSubject != "sightings.recorded" {
		t.Fatalf("expected default subject sightings.recorded, got %q", cfg.NATSSubject)
	}
	if cfg.VisionModel != "llava:13b" {
		t.Fatalf("expected default vision model llava:13b, got %q", cfg.VisionModel)
	}
	if cfg.VisionTimeoutSeconds != 60 {
		t.Fatalf("expected default vision timeout 60, got %d", cfg.VisionTimeoutSeconds)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected default upload cap 10MiB, got %d", cfg.MaxUploadBytes)
	}
	if cfg.APIRateLimitRPS != 0 {
		t.Fatalf("expected rate limiting disabled by default, got %d", cfg.APIRateLimitRPS)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("VISION_URL", "http://vision:11434")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("API_RATE_LIMIT_BURST", "50")
	t.Setenv("API_MAX_IN_FLIGHT", "64")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Fatalf("expected port override, got %q", cfg.APIPort)
	}
	if cfg.VisionURL != "http://vision:11434" {
		t.Fatalf("expected vision url override, got %q", cfg.VisionURL)
	}
	if cfg.APIRateLimitRPS != 25 || cfg.APIRateLimitBurst != 50 {
		t.Fatalf("expected rate limit overrides, got rps=%d burst=%d", cfg.APIRateLimitRPS, cfg.APIRateLimitBurst)
	}
	if cfg.APIMaxInFlight != 64 {
		t.Fatalf("expected max in flight 64, got %d", cfg.APIMaxInFlight)
	}
}

func TestLoadFallsBackOnMalformedInt(t *testing.T) {
	t.Setenv("VISION_TIMEOUT_SECONDS", "not-a-number")

	cfg := Load()
	if cfg.VisionTimeoutSeconds != 60 {
		t.Fatalf("expected fallback timeout 60, got %d", cfg.VisionTimeoutSeconds)
	}
}
