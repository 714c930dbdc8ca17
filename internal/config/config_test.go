package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	c, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Raster.Band != 1 || c.Raster.Driver != "auto" {
		t.Errorf("raster = %+v", c.Raster)
	}
	if c.Server.Port != 8080 || c.Server.Timeout != 30*time.Second || c.Server.CacheTTL != 10*time.Minute {
		t.Errorf("server = %+v", c.Server)
	}
}

func TestLoadFromYAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	yaml := `
log:
  verbose: true
  format: json
raster:
  band: 2
server:
  port: 9090
  timeout: 5s
  data_dir: /srv/rasters
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("ReadConfig returned error: %v", err)
	}

	c, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !c.Log.Verbose || c.Log.Format != "json" {
		t.Errorf("log = %+v", c.Log)
	}
	if c.Raster.Band != 2 || c.Raster.Driver != "auto" {
		t.Errorf("raster = %+v", c.Raster)
	}
	if c.Server.Port != 9090 || c.Server.Timeout != 5*time.Second || c.Server.DataDir != "/srv/rasters" {
		t.Errorf("server = %+v", c.Server)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"valid", Config{Raster: Raster{Band: 1}}, false},
		{"band zero", Config{Raster: Raster{Band: 0}}, true},
		{"bad log format", Config{Raster: Raster{Band: 1}, Log: Log{Format: "xml"}}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.config.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := Log{Verbose: true, Format: "json"}.Logger(&buf)
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
	log.Debug("hello")
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}

	quiet := Log{}.Logger(&buf)
	if quiet.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", quiet.GetLevel())
	}
}
