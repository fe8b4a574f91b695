// Package config loads the discovery configuration bundle: built-in
// defaults, an optional TOML or YAML file, then environment overrides.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrNotImplemented, "rawBytesProvider supports bytes only")
}

// Settings is the discovery configuration bundle.
type Settings struct {
	// Enabled gates the whole registration mechanism.
	Enabled bool `koanf:"enabled"`

	// Verbose enables diagnostic logging.
	Verbose bool `koanf:"verbose"`

	Scan struct {
		// Packages are the base search scopes (package path prefixes).
		Packages []string `koanf:"packages"`

		// Exclude are patterns matched against candidate type names.
		Exclude []string `koanf:"exclude"`
	} `koanf:"scan"`

	Proxy struct {
		// Enabled gates interface-proxy support.
		Enabled bool `koanf:"enabled"`
	} `koanf:"proxy"`

	Sequences struct {
		// Bean is the registry name the sequence-provider map is
		// published under.
		Bean string `koanf:"bean"`
	} `koanf:"sequences"`
}

// Files probed in the working directory, in order.
var configFiles = []string{
	".repobind.toml",
	"repobind.toml",
	".repobind.yaml",
	"repobind.yaml",
}

// Load builds Settings from defaults, the first config file found under
// dir (the working directory when empty), and REPOBIND_* environment
// variables.
func Load(dir string) (*Settings, error) {
	defer logging.LogDuration(time.Now(), "config load")

	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if dir == "" {
		dir = "."
	}
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
		}
		break
	}

	err := k.Load(env.Provider("REPOBIND_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "REPOBIND_")), "_", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if settings.Sequences.Bean == "" {
		return nil, errors.New(errors.ErrConfigValid, "sequences.bean must not be empty")
	}
	return &settings, nil
}

func parserFor(path string) koanf.Parser {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}
