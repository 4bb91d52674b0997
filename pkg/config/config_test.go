package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/fileseed/internal/models"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"MONGO_URI", "DATABASE_URL", "FILESEED_DB_NAME"} {
		t.Setenv(key, "")
	}
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)

	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
database:
  backend: "mongo"
  url: "mongodb://db.internal:27017"
  name: "orientation_test"
  collection: "file_meta"
  bucket: "uploads"
  timeout: 5s

seed:
  rate_limit: 20
  infer_types: true
  files:
    - filename: "Orientation Info.docx"
      file_type: "docx"
    - filename: "index_faiss"

ui:
  no_color: true
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	// Test loading config
	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	// Verify loaded values
	assert.Equal(t, "mongo", config.Database.Backend)
	assert.Equal(t, "mongodb://db.internal:27017", config.Database.URL)
	assert.Equal(t, "orientation_test", config.Database.Name)
	assert.Equal(t, "file_meta", config.Database.Collection)
	assert.Equal(t, "uploads", config.Database.Bucket)
	assert.Equal(t, 5*time.Second, config.Database.Timeout)
	assert.Equal(t, 20.0, config.Seed.RateLimit)
	assert.True(t, config.Seed.InferTypes)
	assert.Equal(t, []models.SeedEntry{
		{Filename: "Orientation Info.docx", FileType: "docx"},
		{Filename: "index_faiss"},
	}, config.Seed.Files)
	assert.True(t, config.UI.NoColor)
	assert.False(t, config.UI.HideProgress)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("ui:\n  hide_progress: true\n"), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "mongo", config.Database.Backend)
	assert.Equal(t, "mongodb://localhost:27017", config.Database.URL)
	assert.Equal(t, "orientation_db", config.Database.Name)
	assert.Equal(t, "files", config.Database.Collection)
	assert.Equal(t, "fs", config.Database.Bucket)
	assert.Equal(t, 10*time.Second, config.Database.Timeout)
	assert.Equal(t, DefaultFiles(), config.Seed.Files)
	assert.True(t, config.UI.HideProgress)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database: [unclosed"), 0644))
	_, err = LoadConfig(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing config file")
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		var c Config
		c.Database.Backend = "mongo"
		c.Database.URL = "mongodb://localhost:27017"
		c.Database.Name = "orientation_db"
		c.Database.Collection = "files"
		c.Database.Timeout = time.Second
		c.Seed.Files = DefaultFiles()
		return c
	}

	tests := []struct {
		name          string
		mutate        func(c *Config)
		errorMessages []string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name: "memory backend needs no url",
			mutate: func(c *Config) {
				c.Database.Backend = "memory"
				c.Database.URL = ""
			},
		},
		{
			name: "postgres url on mongo backend",
			mutate: func(c *Config) {
				c.Database.URL = "postgres://localhost:5432/files"
			},
			errorMessages: []string{"database.url: invalid database URL"},
		},
		{
			name: "missing postgres url",
			mutate: func(c *Config) {
				c.Database.Backend = "postgres"
				c.Database.URL = ""
			},
			errorMessages: []string{"database.url: database URL is required for the postgres backend"},
		},
		{
			name: "invalid config",
			mutate: func(c *Config) {
				c.Database.Backend = "redis"
				c.Database.Name = ""
				c.Database.Collection = "$files"
				c.Database.Timeout = -time.Second
				c.Seed.RateLimit = -1
				c.Seed.Files = []models.SeedEntry{{Filename: " ", FileType: ""}}
			},
			errorMessages: []string{
				`database.backend: unknown backend "redis"`,
				"database.name: database name is required",
				"database.collection: collection name must be non-empty",
				"database.timeout: timeout must not be negative",
				"seed.rate_limit: rate_limit must not be negative",
				"seed.files[0].filename: filename is required",
				"seed.files[0].file_type: file_type is required unless infer_types is set",
			},
		},
		{
			name: "inferred types may be empty",
			mutate: func(c *Config) {
				c.Seed.InferTypes = true
				c.Seed.Files = []models.SeedEntry{{Filename: "index_pkl"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			errors := config.Validate()
			assert.Len(t, errors, len(tt.errorMessages))

			for i, msg := range tt.errorMessages {
				if i < len(errors) {
					assert.Contains(t, errors[i].Error(), msg)
				}
			}
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://env-mongo:27017")
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/files")
	t.Setenv("FILESEED_DB_NAME", "env_db")

	config := &Config{}
	mergeWithEnv(config)

	assert.Equal(t, "mongodb://env-mongo:27017", config.Database.URL)
	assert.Equal(t, "env_db", config.Database.Name)

	pg := &Config{}
	pg.Database.Backend = "postgres"
	mergeWithEnv(pg)

	assert.Equal(t, "postgres://env-db:5432/files", pg.Database.URL)
}

func TestLoadConfig_BackendOverrideReadsDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/files")
	chdir(t, t.TempDir())

	config, err := LoadConfig("", func(c *Config) {
		c.Database.Backend = "postgres"
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres", config.Database.Backend)
	assert.Equal(t, "postgres://env-db:5432/files", config.Database.URL)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_BackendOverrideOnMongoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://env-db:5432/files")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("database:\n  backend: mongo\n"), 0644))

	config, err := LoadConfig(configPath, func(c *Config) {
		c.Database.Backend = "postgres"
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://env-db:5432/files", config.Database.URL)
	assert.Empty(t, config.Validate())
}

func TestLoadConfig_OverrideWinsOverEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://env-mongo:27017")
	chdir(t, t.TempDir())

	config, err := LoadConfig("", func(c *Config) {
		c.Database.URL = "mongodb://flag-mongo:27017"
	})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://flag-mongo:27017", config.Database.URL)
}

func TestLoadConfig_PostgresWithoutURL(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	config, err := LoadConfig("", func(c *Config) {
		c.Database.Backend = "postgres"
	})
	require.NoError(t, err)

	assert.Empty(t, config.Database.URL)
	errs := config.Validate()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "database URL is required for the postgres backend")
}
