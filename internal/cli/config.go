package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the faro.yaml configuration structure.
type Config struct {
	Database struct {
		URL            string `yaml:"url"`
		MaxConnections int    `yaml:"max_connections"`
	} `yaml:"database"`

	Realtime struct {
		Channel string `yaml:"channel"`
	} `yaml:"realtime"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// LoadConfig reads the config file at path, falling back to the default
// locations. A missing file is not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = findConfigPath()
	}

	var config Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if url := os.Getenv("FARO_DATABASE_URL"); url != "" {
		config.Database.URL = url
	}
	if config.Database.MaxConnections == 0 {
		config.Database.MaxConnections = 10
	}
	if config.Realtime.Channel == "" {
		config.Realtime.Channel = "faro_changes"
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	return &config, nil
}

func findConfigPath() string {
	if path := os.Getenv("FARO_CONFIG"); path != "" {
		return path
	}
	for _, loc := range []string{"faro.yaml", "faro.yml", ".faro.yaml", ".faro.yml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}
