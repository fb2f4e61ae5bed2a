package dagapi

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like "5s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("dagapi: parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the application configuration, loaded from a YAML file with
// flags layered on top by the CLI.
type Config struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string `yaml:"endpoint"`

	// PollInterval paces run-list fetches.
	PollInterval Duration `yaml:"poll_interval"`

	// RunLimit caps how many runs each fetch requests.
	RunLimit int `yaml:"run_limit"`

	// PinFile is where unpinned tag keys are persisted.
	PinFile string `yaml:"pin_file"`

	// LogFile receives structured logs; the terminal belongs to the TUI.
	LogFile string `yaml:"log_file"`

	// Locations lists known workspace locations as "repository@location"
	// entries, used to resolve job links. Runs from unknown locations get
	// a best-effort guess link.
	Locations []string `yaml:"locations"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Endpoint:     "http://localhost:3000/graphql",
		PollInterval: Duration(5 * time.Second),
		RunLimit:     100,
	}
}

// LoadConfig reads the YAML config at path, layering it over defaults.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(fs afero.Fs, path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("dagapi: read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("dagapi: parse config %s: %w", path, err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.RunLimit <= 0 {
		cfg.RunLimit = DefaultConfig().RunLimit
	}
	return cfg, nil
}
