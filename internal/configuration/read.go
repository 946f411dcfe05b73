package configuration

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/HazyCorp/hazyerr/internal/metricsrv"
	"github.com/HazyCorp/hazyerr/internal/reportstore"
	"github.com/HazyCorp/hazyerr/pkg/common/hzlog"
	"github.com/HazyCorp/hazyerr/pkg/invoke"
)

type Config struct {
	fx.Out

	Logging hzlog.Config       `json:"logging" yaml:"logging"`
	Serve   Serve              `json:"serve" yaml:"serve"`
	Metrics metricsrv.Config   `json:"metrics" yaml:"metrics"`
	Invoke  invoke.Config      `json:"invoke" yaml:"invoke"`
	Redis   Redis              `json:"redis" yaml:"redis"`
	Reports reportstore.Config `json:"reports" yaml:"reports"`
}

type Serve struct {
	Port uint64 `json:"port" yaml:"port"`
}

func Default() Config {
	return Config{
		Logging: hzlog.DefaultConfig(),
		Serve: Serve{
			Port: 13337,
		},
		Metrics: metricsrv.Config{
			Port: 14448,
		},
		Invoke: invoke.DefaultConfig(),
	}
}

// Read reads the yaml config at path on top of the defaults. Environment variables
// are expanded before parsing. An empty path gives the defaults.
func Read(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read config at %s", path)
	}

	return Parse([]byte(os.ExpandEnv(string(data))))
}

func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, errors.Wrap(err, "cannot parse config as yaml")
	}

	if err := Validate(&c); err != nil {
		return Config{}, errors.Wrap(err, "invalid config provided")
	}

	return c, nil
}

func Validate(c *Config) error {
	if c.Serve.Port == 0 {
		return errors.Errorf("config.serve.port must be provided")
	}
	if c.Metrics.Port == 0 {
		return errors.Errorf("config.metrics.port must be provided")
	}
	if c.Invoke.Concurrency < 0 {
		return errors.Errorf("config.invoke.concurrency cannot be negative")
	}
	if c.Invoke.Rate != nil && c.Invoke.Rate.Per < 0 {
		return errors.Errorf("config.invoke.rate.per cannot be negative")
	}
	if c.Reports.TTL < 0 {
		return errors.Errorf("config.reports.ttl cannot be negative")
	}

	if c.Redis.Enabled() {
		if err := c.Redis.Validate(); err != nil {
			return errors.Wrap(err, "invalid redis config")
		}
	}

	return nil
}
