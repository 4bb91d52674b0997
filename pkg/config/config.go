package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xhad/fileseed/internal/models"
)

type Config struct {
	Database struct {
		Backend    string        `yaml:"backend"`
		URL        string        `yaml:"url"`
		Name       string        `yaml:"name"`
		Collection string        `yaml:"collection"`
		Bucket     string        `yaml:"bucket"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"database"`

	Seed struct {
		RateLimit      float64            `yaml:"rate_limit"`
		InferTypes     bool               `yaml:"infer_types"`
		LowercaseTypes bool               `yaml:"lowercase_types"`
		Files          []models.SeedEntry `yaml:"files"`
	} `yaml:"seed"`

	UI struct {
		NoColor      bool `yaml:"no_color"`
		HideProgress bool `yaml:"hide_progress"`
	} `yaml:"ui"`
}

// DefaultFiles is the seed list used when the config names none.
func DefaultFiles() []models.SeedEntry {
	return []models.SeedEntry{
		{Filename: "Orientation Info.docx", FileType: "docx"},
		{Filename: "Orientation Info zh.docx", FileType: "docx"},
		{Filename: "index_faiss", FileType: "faiss"},
		{Filename: "index_pkl", FileType: "pkl"},
	}
}

// Override edits a loaded config before environment variables and defaults
// are applied, so a backend chosen on the command line decides which
// environment variable supplies the URL.
type Override func(config *Config)

func LoadConfig(path string, overrides ...Override) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"fileseed.yaml",
			"fileseed.yml",
			filepath.Join(os.Getenv("HOME"), ".config/fileseed/config.yaml"),
			"/etc/fileseed/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig(overrides...)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	finalize(&config, overrides)

	return &config, nil
}

func getDefaultConfig(overrides ...Override) (*Config, error) {
	config := &Config{}
	finalize(config, overrides)
	return config, nil
}

// finalize layers file < environment < overrides, then fills defaults.
// Overrides run twice: first so the env merge sees the final backend,
// then so explicit values win over the environment.
func finalize(config *Config, overrides []Override) {
	applyOverrides(config, overrides)

	// Merge with environment variables
	mergeWithEnv(config)
	applyOverrides(config, overrides)

	// Apply defaults for unset values
	applyDefaults(config)
}

func applyOverrides(config *Config, overrides []Override) {
	for _, o := range overrides {
		o(config)
	}
}

func applyDefaults(config *Config) {
	if config.Database.Backend == "" {
		config.Database.Backend = "mongo"
	}
	if config.Database.URL == "" && config.Database.Backend == "mongo" {
		config.Database.URL = "mongodb://localhost:27017"
	}
	if config.Database.Name == "" {
		config.Database.Name = "orientation_db"
	}
	if config.Database.Collection == "" {
		config.Database.Collection = "files"
	}
	if config.Database.Bucket == "" {
		config.Database.Bucket = "fs"
	}
	if config.Database.Timeout == 0 {
		config.Database.Timeout = 10 * time.Second
	}

	if len(config.Seed.Files) == 0 {
		config.Seed.Files = DefaultFiles()
	}
}

func mergeWithEnv(config *Config) {
	switch config.Database.Backend {
	case "postgres":
		if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
			config.Database.URL = dbURL
		}
	case "", "mongo":
		if mongoURI := os.Getenv("MONGO_URI"); mongoURI != "" {
			config.Database.URL = mongoURI
		}
	}
	if name := os.Getenv("FILESEED_DB_NAME"); name != "" {
		config.Database.Name = name
	}
}
