package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != 8080 {
		t.Errorf("App.Port = %d, want 8080", cfg.App.Port)
	}
	if cfg.Geo.RadiusMeters != 20000 {
		t.Errorf("Geo.RadiusMeters = %d, want 20000", cfg.Geo.RadiusMeters)
	}
	if cfg.Geo.MaxResults != 5 {
		t.Errorf("Geo.MaxResults = %d, want 5", cfg.Geo.MaxResults)
	}
	if cfg.Redis.FacilityTTLSeconds != 600 {
		t.Errorf("Redis.FacilityTTLSeconds = %d, want 600", cfg.Redis.FacilityTTLSeconds)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("GEO_RADIUS_METERS", "5000")
	t.Setenv("MODEL_PATH", "/models/custom.onnx")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.Port != 9090 {
		t.Errorf("App.Port = %d, want 9090", cfg.App.Port)
	}
	if cfg.Geo.RadiusMeters != 5000 {
		t.Errorf("Geo.RadiusMeters = %d, want 5000", cfg.Geo.RadiusMeters)
	}
	if cfg.Model.Path != "/models/custom.onnx" {
		t.Errorf("Model.Path = %q", cfg.Model.Path)
	}
	if cfg.HTTPAddr() != "0.0.0.0:9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr())
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.User = "scan"
	cfg.MySQL.Password = "pw"
	cfg.MySQL.Host = "db"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "xrays"
	cfg.MySQL.Params = "parseTime=true"

	want := "scan:pw@tcp(db:3307)/xrays?parseTime=true"
	if got := cfg.MySQLDSN(); got != want {
		t.Errorf("MySQLDSN = %q, want %q", got, want)
	}
}
