package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes a temp YAML file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const validConfig = `
site:
  id: greenhouse-01
  name: North Greenhouse
store:
  path: /tmp/canopy-test.db
control:
  interval: 30
  users:
    - user_id: user-01
      station_id: id-03
      mappings:
        - quantity: temperature
          actuator_id: 16
          polarity: above_max_on
`

func TestLoad_ValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Site.ID != "greenhouse-01" {
		t.Errorf("site.id = %q, want greenhouse-01", cfg.Site.ID)
	}
	if cfg.Control.Interval != 30 {
		t.Errorf("control.interval = %d, want 30", cfg.Control.Interval)
	}
	if len(cfg.Control.Users) != 1 {
		t.Fatalf("len(users) = %d, want 1", len(cfg.Control.Users))
	}
	u := cfg.Control.Users[0]
	if u.UserID != "user-01" || u.StationID != "id-03" {
		t.Errorf("user binding = %+v", u)
	}
	if len(u.Mappings) != 1 || u.Mappings[0].ActuatorID != 16 {
		t.Errorf("mappings = %+v, want actuator 16", u.Mappings)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, "site:\n  id: x\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Path == "" {
		t.Error("store.path default missing")
	}
	if cfg.Store.OpTimeout != 10 {
		t.Errorf("store.op_timeout = %d, want default 10", cfg.Store.OpTimeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("logging.level = %q, want default info", cfg.Logging.Level)
	}
	if cfg.Control.Interval != 60 {
		t.Errorf("control.interval = %d, want default 60", cfg.Control.Interval)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("mqtt port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CANOPY_STORE_PATH", "/var/lib/canopy/override.db")
	t.Setenv("CANOPY_MQTT_HOST", "broker.internal")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Path != "/var/lib/canopy/override.db" {
		t.Errorf("store.path = %q, want env override", cfg.Store.Path)
	}
	if cfg.MQTT.Broker.Host != "broker.internal" {
		t.Errorf("mqtt host = %q, want env override", cfg.MQTT.Broker.Host)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			"missing site id",
			func(c *Config) { c.Site.ID = "" },
			"site.id",
		},
		{
			"bad qos",
			func(c *Config) { c.MQTT.QoS = 3 },
			"mqtt.qos",
		},
		{
			"zero interval",
			func(c *Config) { c.Control.Interval = 0 },
			"control.interval",
		},
		{
			"unknown quantity",
			func(c *Config) { c.Control.Users[0].Mappings[0].Quantity = "wind" },
			"quantity",
		},
		{
			"bad polarity",
			func(c *Config) { c.Control.Users[0].Mappings[0].Polarity = "inverted" },
			"polarity",
		},
		{
			"zero pin",
			func(c *Config) { c.Control.Users[0].Mappings[0].ActuatorID = 0 },
			"actuator_id",
		},
		{
			"missing station",
			func(c *Config) { c.Control.Users[0].StationID = "" },
			"station_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, validConfig))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate passed, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestStoreOpTimeout(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.StoreOpTimeout(); got != 10*time.Second {
		t.Errorf("StoreOpTimeout = %v, want 10s", got)
	}
}
