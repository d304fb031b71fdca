package config

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != ":8080" {
		t.Fatalf("default port: got %q want :8080", cfg.Port)
	}
	if cfg.SolarAPIUrl != "https://solar.googleapis.com" {
		t.Fatalf("default solar api url: got %q", cfg.SolarAPIUrl)
	}
	if cfg.PanelCapacityWatts != 250 {
		t.Fatalf("default panel capacity: got %v want 250", cfg.PanelCapacityWatts)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("PORT", ":9091")
	t.Setenv("PANEL_CAPACITY_WATTS", "400")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != ":9091" {
		t.Fatalf("env port override: got %q want :9091", cfg.Port)
	}
	if cfg.PanelCapacityWatts != 400 {
		t.Fatalf("env capacity override: got %v want 400", cfg.PanelCapacityWatts)
	}
}
