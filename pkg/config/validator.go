package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var urlSchemes = map[string][]string{
	"mongo":    {"mongodb", "mongodb+srv"},
	"postgres": {"postgres", "postgresql"},
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Database config
	switch c.Database.Backend {
	case "mongo", "postgres":
		if c.Database.URL == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: fmt.Sprintf("database URL is required for the %s backend", c.Database.Backend),
			})
		} else if u, err := url.Parse(c.Database.URL); err != nil || !hasScheme(u.Scheme, urlSchemes[c.Database.Backend]) {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	case "memory":
	default:
		errors = append(errors, ValidationError{
			Field:   "database.backend",
			Message: fmt.Sprintf("unknown backend %q (want mongo, postgres or memory)", c.Database.Backend),
		})
	}

	if c.Database.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "database.name",
			Message: "database name is required",
		})
	}

	if c.Database.Collection == "" || strings.ContainsAny(c.Database.Collection, "$\x00") {
		errors = append(errors, ValidationError{
			Field:   "database.collection",
			Message: "collection name must be non-empty and contain no '$'",
		})
	}

	if c.Database.Timeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.timeout",
			Message: "timeout must not be negative",
		})
	}

	// Validate Seed config
	if c.Seed.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "seed.rate_limit",
			Message: "rate_limit must not be negative",
		})
	}

	for i, f := range c.Seed.Files {
		if strings.TrimSpace(f.Filename) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("seed.files[%d].filename", i),
				Message: "filename is required",
			})
		}
		if strings.TrimSpace(f.FileType) == "" && !c.Seed.InferTypes {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("seed.files[%d].file_type", i),
				Message: "file_type is required unless infer_types is set",
			})
		}
	}

	return errors
}

func hasScheme(scheme string, allowed []string) bool {
	for _, s := range allowed {
		if scheme == s {
			return true
		}
	}
	return false
}
