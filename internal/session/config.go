package session

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultRegistryURL is used when neither the config file nor a flag names
// an authority endpoint.
const DefaultRegistryURL = "https://api.parcelreg.dev"

// Config is the client configuration stored alongside the session files.
type Config struct {
	RegistryURL string `yaml:"registry_url"`
	Profile     string `yaml:"profile"`
}

// LoadConfig reads config.yaml from baseDir (or ~/.parcel when empty). A
// missing file yields defaults rather than an error.
func LoadConfig(baseDir string) (*Config, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".parcel")
	}

	cfg := &Config{
		RegistryURL: DefaultRegistryURL,
		Profile:     "default",
	}

	data, err := os.ReadFile(filepath.Join(baseDir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.RegistryURL == "" {
		cfg.RegistryURL = DefaultRegistryURL
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}

	return cfg, nil
}
