//go:build !tinygo

package config

import (
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

// Load reads YAML and overrides the defaults. An empty path uses the defaults only. Motor entries
// start from DefaultMotor, so a file only needs the fields it changes
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "error reading config")
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "error parsing config %s", path)
	}

	return cfg, cfg.Validate()
}

// UnmarshalYAML fills a motor entry on top of DefaultMotor
func (m *MotorConfig) UnmarshalYAML(unmarshal func(any) error) error {
	type plain MotorConfig
	p := plain(DefaultMotor(""))
	if err := unmarshal(&p); err != nil {
		return err
	}
	*m = MotorConfig(p)
	return nil
}
