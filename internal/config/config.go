package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config models the optional agent manifest (configs/agent.yaml). Everything
// in it can also be supplied through the environment or flags; the manifest
// exists so an agent bundle can ship its wiring in one reviewable file.
type Config struct {
	Proxy   ProxyConfig       `yaml:"proxy"`
	Agent   AgentConfig       `yaml:"agent"`
	Logging LoggingConfig     `yaml:"logging"`
	Chains  map[string]string `yaml:"chains"`
}

// ProxyConfig controls how the SDK reaches the host proxy.
type ProxyConfig struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	Debug          bool   `yaml:"debug"`
}

// AgentConfig carries the agent credentials. Leaving them empty defers to the
// environment.
type AgentConfig struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

// LoggingConfig mirrors the logger setup knobs.
type LoggingConfig struct {
	Level       string   `yaml:"level"`
	Format      string   `yaml:"format"`
	OutputPaths []string `yaml:"output_paths"`
}

// Load parses the YAML manifest at path. An empty path yields a defaults-only
// configuration so the manifest stays optional.
func Load(path string) (*Config, error) {
	var cfg Config
	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read agent manifest: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse agent manifest: %w", err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if len(c.Logging.OutputPaths) == 0 {
		c.Logging.OutputPaths = []string{"stdout"}
	}
	if c.Chains == nil {
		c.Chains = map[string]string{}
	}
}

// ResolveChain maps a manifest alias to its CAIP-2 id. Anything already
// shaped like a CAIP-2 id (it contains a colon) passes through untouched, so
// chains absent from the manifest remain addressable.
func (c *Config) ResolveChain(name string) (string, error) {
	if id, ok := c.Chains[name]; ok {
		return id, nil
	}
	if strings.Contains(name, ":") {
		return name, nil
	}
	return "", fmt.Errorf("unknown chain alias %q", name)
}
