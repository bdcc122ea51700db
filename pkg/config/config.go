package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	Prod = "prod"
	Dev  = "dev"
	Test = "test"
)

// Duration accepts Go duration strings ("5s", "1m") in YAML, falling back
// to plain nanosecond integers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		var n int64
		if intErr := node.Decode(&n); intErr != nil {
			return err
		}
		*d = Duration(n)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Soak struct {
	Soak SoakBox `yaml:"soak"`
}

type SoakBox struct {
	Enabled       bool          `yaml:"enabled"`
	Api           Api           `yaml:"api"`
	Probe         Probe         `yaml:"probe"`
	Buffer        Buffer        `yaml:"buffer"`
	Load          Load          `yaml:"load"`
	Rate          Rate          `yaml:"rate"`
	ForceGC       ForceGC  `yaml:"force_gc"`
	StatsInterval Duration `yaml:"stats_interval"` // e.g. "5s"
}

type Api struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Port    string `yaml:"port"`
}

type Probe struct {
	Timeout Duration `yaml:"timeout"`
}

type Buffer struct {
	Capacity int `yaml:"capacity"` // number of elements, fixed for the whole run
}

type Load struct {
	// Elements is the total number of elements to stream through the
	// buffer; 0 means run until shutdown.
	Elements uint64 `yaml:"elements"`
	Batch    Batch  `yaml:"batch"`
	// SingleRatio is the share of single-element operations mixed into
	// the batched stream, between 0 and 1.
	SingleRatio float64 `yaml:"single_ratio"`
}

type Batch struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type Rate struct {
	Enabled   bool `yaml:"enabled"`
	PerSecond int  `yaml:"per_second"` // producer batch operations per second
}

type ForceGC struct {
	Enabled           bool     `yaml:"enabled"`
	GCInterval        Duration `yaml:"gc_interval"`
	FreeOsMemInterval Duration `yaml:"free_os_mem_interval"`
}

const (
	configPath      = "/config/config.yaml"
	configPathLocal = "/config/config.local.yaml"
	configPathTest  = "/../../config/config.test.yaml"
)

// LoadConfig resolves the config path from APP_ENV (a .env file is applied
// first when present), unmarshals the YAML and fills in derived defaults.
func LoadConfig() (*Soak, error) {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")

	var path string
	switch env {
	case Prod:
		path = configPath
	case Dev:
		path = configPathLocal
	case Test:
		path = configPathTest
	default:
		return nil, errors.New("unknown APP_ENV: '" + env + "'")
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path, err = filepath.Abs(filepath.Clean(dir + path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute config filepath: %w", err)
	}

	if _, err = os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Soak
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}

	if err = cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Soak) validate() error {
	box := &c.Soak

	if box.Buffer.Capacity < 0 {
		return errors.New("soak.buffer.capacity must not be negative")
	}
	if box.Load.Batch.Min <= 0 {
		box.Load.Batch.Min = 1
	}
	if box.Load.Batch.Max < box.Load.Batch.Min {
		box.Load.Batch.Max = box.Load.Batch.Min
	}
	if box.Load.SingleRatio < 0 || box.Load.SingleRatio > 1 {
		return errors.New("soak.load.single_ratio must be between 0 and 1")
	}
	if box.Rate.Enabled && box.Rate.PerSecond <= 0 {
		return errors.New("soak.rate.per_second must be positive when rate limiting is enabled")
	}
	if box.StatsInterval <= 0 {
		box.StatsInterval = Duration(5 * time.Second)
	}
	if box.Probe.Timeout <= 0 {
		box.Probe.Timeout = Duration(5 * time.Second)
	}
	return nil
}
