package config

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config is the full configuration, read from flags, the config file and
// PLANRASTER_* environment variables.
type Config struct {
	Log    Log    `mapstructure:"log"`
	Raster Raster `mapstructure:"raster"`
	Server Server `mapstructure:"server"`
}

type Log struct {
	Verbose bool   `mapstructure:"verbose"`
	Format  string `mapstructure:"format"`
}

type Raster struct {
	Band   int    `mapstructure:"band"`
	Driver string `mapstructure:"driver"`
}

type Server struct {
	Bind      string        `mapstructure:"bind"`
	Port      int           `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	DataDir   string        `mapstructure:"data_dir"`
	CacheSize int64         `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// SetDefaults registers the default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.format", "text")
	v.SetDefault("raster.band", 1)
	v.SetDefault("raster.driver", "auto")
	v.SetDefault("server.bind", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.data_dir", ".")
	v.SetDefault("server.cache_size", 1000)
	v.SetDefault("server.cache_ttl", 10*time.Minute)
}

// Load unmarshals v into a Config and validates it
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values no command can work with
func (c *Config) Validate() error {
	if c.Raster.Band < 1 {
		return fmt.Errorf("band must be 1 or greater, got %d", c.Raster.Band)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s", c.Log.Format)
	}
	return nil
}

// Logger returns a logrus logger writing to w
func (l Log) Logger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if l.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if l.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return log
}
