package config

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	DefaultListenAddr        = ":8271"
	DefaultSessionTTL        = time.Hour
	DefaultSchemaCacheMaxAge = 7 * 24 * time.Hour
	DefaultSchemaCachePath   = "helmdeck.db"
)

// HelmdeckConfig is the service configuration, loaded from a YAML file and
// overridable by flags.
type HelmdeckConfig struct {
	ListenAddr        string `yaml:"listenAddr"`
	Namespace         string `yaml:"namespace"`
	AllNamespaces     bool   `yaml:"allNamespaces"`
	HelmDriver        string `yaml:"helmDriver"`
	SchemaCachePath   string `yaml:"schemaCachePath"`
	SchemaCacheMaxAge string `yaml:"schemaCacheMaxAge"`
	SessionTTL        string `yaml:"sessionTTL"`
	LogLevel          string `yaml:"logLevel"`
}

// ParseHelmdeckConfig unmarshals a config file and validates the duration
// fields.
func ParseHelmdeckConfig(data []byte) (*HelmdeckConfig, error) {
	var c HelmdeckConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config file")
	}

	if _, err := c.SessionTTLDuration(); err != nil {
		return nil, err
	}
	if _, err := c.SchemaCacheMaxAgeDuration(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *HelmdeckConfig) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

func (c *HelmdeckConfig) GetSchemaCachePath() string {
	if c.SchemaCachePath == "" {
		return DefaultSchemaCachePath
	}
	return c.SchemaCachePath
}

func (c *HelmdeckConfig) SessionTTLDuration() (time.Duration, error) {
	if c.SessionTTL == "" {
		return DefaultSessionTTL, nil
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid sessionTTL %q", c.SessionTTL)
	}
	return d, nil
}

func (c *HelmdeckConfig) SchemaCacheMaxAgeDuration() (time.Duration, error) {
	if c.SchemaCacheMaxAge == "" {
		return DefaultSchemaCacheMaxAge, nil
	}
	d, err := time.ParseDuration(c.SchemaCacheMaxAge)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid schemaCacheMaxAge %q", c.SchemaCacheMaxAge)
	}
	return d, nil
}
