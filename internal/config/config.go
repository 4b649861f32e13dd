// Package config loads the reactpy-devtools YAML configuration file.
//
// The client runtime itself (pkg/vclient, cmd/reactpy-client) takes all
// its configuration as Go-level Options; this package exists only for
// the devtools CLI (cmd/reactpy-devtools), which needs a file a human
// can edit between invocations of serve/mirror/replay.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/reactpy-go/client/internal/rerrors"
)

const (
	// FileName is the config file name devtools looks for in the
	// current working directory.
	FileName = "reactpy-devtools.yaml"

	DefaultHost       = "localhost"
	DefaultPort       = 8765
	DefaultModulesDir = "modules"
	DefaultAssetsDir  = "assets"
)

// Config is the complete reactpy-devtools.yaml schema.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Observe ObserveConfig `yaml:"observability"`

	// path records where this Config was loaded from, for Save.
	path string
}

// ServerConfig configures the devserver's HTTP/WebSocket listener and
// the on-disk directories it serves import-source modules and static
// assets from.
type ServerConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ModulesDir string `yaml:"modulesDir,omitempty"`
	AssetsDir  string `yaml:"assetsDir,omitempty"`
}

// MirrorConfig configures the S3-backed import-source bundle mirror
// used by `reactpy-devtools mirror` and by the devserver's fetch-through
// module cache.
type MirrorConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Region string `yaml:"region,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
}

// ObserveConfig configures the devserver's observability. MetricsEnabled
// toggles the Prometheus /metrics route. TracingEnabled and OTLPEndpoint
// are read from the file but the devserver does not consult them: it
// starts an OpenTelemetry span for every stream session regardless.
type ObserveConfig struct {
	MetricsEnabled bool   `yaml:"metricsEnabled"`
	TracingEnabled bool   `yaml:"tracingEnabled"`
	OTLPEndpoint   string `yaml:"otlpEndpoint,omitempty"`
}

// Default returns a Config populated with the devtools CLI's defaults,
// the configuration used when no reactpy-devtools.yaml exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       DefaultHost,
			Port:       DefaultPort,
			ModulesDir: DefaultModulesDir,
			AssetsDir:  DefaultAssetsDir,
		},
		Observe: ObserveConfig{
			MetricsEnabled: true,
		},
	}
}

// Load reads reactpy-devtools.yaml from dir, falling back to Default
// when the file does not exist.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	cfg, err := LoadFile(path)
	if os.IsNotExist(err) {
		d := Default()
		d.path = path
		return d, nil
	}
	return cfg, err
}

// LoadFile reads and parses the config file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, rerrors.New("E601").Wrap(err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, rerrors.New("E602").WithHint("check reactpy-devtools.yaml for a YAML syntax error").Wrap(err)
	}
	cfg.path = path
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero-valued fields left unset by a partial YAML
// document with Default's values, so a config file only needs to name
// what it overrides.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Host == "" {
		c.Server.Host = d.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.ModulesDir == "" {
		c.Server.ModulesDir = d.Server.ModulesDir
	}
	if c.Server.AssetsDir == "" {
		c.Server.AssetsDir = d.Server.AssetsDir
	}
}

// Save writes c back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = filepath.Join(".", FileName)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return rerrors.New("E602").Wrap(err)
	}
	return os.WriteFile(c.path, data, 0o644)
}

// Addr returns the host:port the devserver should bind.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
