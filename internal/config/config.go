package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DetectorConfig points at the external inference service.
type DetectorConfig struct {
	URL        string  `yaml:"url"`
	Confidence float64 `yaml:"confidence"`
}

type Config struct {
	Port          int            `yaml:"port"`
	MaxUploadSize int64          `yaml:"maxUploadSize"`
	DataDir       string         `yaml:"dataDir"`
	DatabasePath  string         `yaml:"databasePath"`
	TemplatesDir  string         `yaml:"templatesDir"`
	Detector      DetectorConfig `yaml:"detector"`
	SeedParts     []string       `yaml:"seedParts"`
}

const (
	defaultPort          = 5052
	defaultMaxUploadSize = 16 * 1024 * 1024
	defaultDataDir       = "./data"
	defaultTemplatesDir  = "./web/templates"
	defaultDetectorURL   = "http://127.0.0.1:8000"
	defaultConfidence    = 0.25
)

// Load reads the YAML config at path. A missing file is not an error:
// the returned config then carries only defaults.
func Load(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config.applyDefaults()

	if config.Detector.Confidence < 0 || config.Detector.Confidence > 1 {
		return nil, fmt.Errorf("detector confidence must be in [0,1], got %v", config.Detector.Confidence)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = defaultMaxUploadSize
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "image_history.db")
	}
	if c.TemplatesDir == "" {
		c.TemplatesDir = defaultTemplatesDir
	}
	if c.Detector.URL == "" {
		c.Detector.URL = defaultDetectorURL
	}
	if c.Detector.Confidence == 0 {
		c.Detector.Confidence = defaultConfidence
	}
	if len(c.SeedParts) == 0 {
		c.SeedParts = []string{"junta_cria"}
	}
}
