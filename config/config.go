// Package config loads this module's YAML configuration file: the quark
// preregistration list, the content store driver selection, and the RPC
// and metrics listen addresses.
package config

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/brindle-bt/brindle/store"
)

// DefaultConfig is a sane configuration used as a fallback and by tests.
var DefaultConfig = Config{
	Store: store.DriverConfig{
		Name: "memory",
	},
	RPC: RPCConfig{
		Addr:            "127.0.0.1:6880",
		ShutdownTimeout: 5 * time.Second,
	},
	Metrics: MetricsConfig{
		Addr: "127.0.0.1:6881",
	},
}

// Config represents the global configuration of a brindled binary.
type Config struct {
	Quark   QuarkConfig        `yaml:"quark"`
	Store   store.DriverConfig `yaml:"store"`
	RPC     RPCConfig          `yaml:"rpc"`
	Metrics MetricsConfig      `yaml:"metrics"`
}

// QuarkConfig configures the process-wide string interner at startup.
type QuarkConfig struct {
	// Preregister interns these strings as quarks before any bencode is
	// parsed, so hot dictionary keys never pay the interning table's
	// write-lock cost on a request path.
	Preregister []string `yaml:"preregister"`
}

// RPCConfig configures the bencode-over-HTTP RPC server.
type RPCConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint. An empty
// Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// ConfigFile represents a YAML configuration file that namespaces all of
// this module's configuration under the "brindle" key, the way the teacher
// namespaces its own config under "chihaya".
type ConfigFile struct {
	Brindle Config `yaml:"brindle"`
}

// Decode unmarshals r into a new Config.
func Decode(r io.Reader) (*Config, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cfgFile := &ConfigFile{}
	if err := yaml.Unmarshal(contents, cfgFile); err != nil {
		return nil, err
	}

	return &cfgFile.Brindle, nil
}

// Open returns a new Config given the path to a YAML configuration file. It
// supports relative and absolute paths and environment variables. Given "",
// it returns DefaultConfig.
func Open(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig
		return &cfg, nil
	}

	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}
