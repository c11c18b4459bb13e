package internal

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/lotpad/internal/parking"
	pkgconfig "github.com/starford/lotpad/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled || cfg.AuthEnabled() {
		t.Errorf("mode = %q, enabled = %v", cfg.Mode, cfg.AuthEnabled())
	}
}

func TestAuthConfig_TokenMode(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}

	cfg = AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestStorageConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  StorageConfig
		ok   bool
	}{
		{"fs with path", StorageConfig{Driver: DriverFS, Path: "./files"}, true},
		{"fs without path", StorageConfig{Driver: DriverFS}, false},
		{"empty driver means fs", StorageConfig{Path: "x"}, true},
		{"sqlite with path", StorageConfig{Driver: DriverSQLite, SQLitePath: "x.db"}, true},
		{"sqlite without path", StorageConfig{Driver: DriverSQLite, Path: "x"}, false},
		{"memory", StorageConfig{Driver: DriverMemory}, true},
		{"unknown driver", StorageConfig{Driver: "s3", Path: "x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err == nil) != tc.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestLotConfig(t *testing.T) {
	cfg := NewDefaultConfig().Lot
	cfg.Policy = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Policy != parking.PolicyAbsorb {
		t.Errorf("policy = %q, want absorb", cfg.Policy)
	}

	bad := NewDefaultConfig().Lot
	bad.Policy = "lenient"
	if err := bad.Validate(); err == nil {
		t.Error("unknown policy should fail")
	}

	bad = NewDefaultConfig().Lot
	bad.Capacity = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero capacity should fail")
	}

	bad = NewDefaultConfig().Lot
	bad.FillMax = -time.Second
	if err := bad.Validate(); err == nil {
		t.Error("negative fill_max should fail")
	}
}

func TestParseYAMLOverDefaults(t *testing.T) {
	cfg := NewDefaultConfig()
	data := []byte(`
app:
  log_level: DEBUG
storage:
  driver: sqlite
  sqlite_path: /tmp/x.db
lot:
  capacity: 5
  policy: strict
  fill_max: 250ms
`)
	if err := pkgconfig.Parse(data, cfg); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("log level = %s", cfg.App.LogLevel)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.Path != "./files" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Lot.Capacity != 5 || cfg.Lot.Policy != parking.PolicyStrict || cfg.Lot.FillMax != 250*time.Millisecond {
		t.Errorf("lot = %+v", cfg.Lot)
	}
	if cfg.Lot.Name != "Bahnhof Parking" || cfg.App.HTTP.Port != 8080 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}
