// Package store provides MetadataStore implementations backed by MongoDB,
// PostgreSQL and process memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xhad/fileseed/internal/types"
)

const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// ErrClosed is returned by a store used after Close.
var ErrClosed = errors.New("store is closed")

type Config struct {
	Backend    string
	URL        string
	Database   string
	Collection string
	// Bucket is the binary storage bucket prefix; its files collection is
	// "<bucket>.files" in MongoDB and "<bucket>_files" in PostgreSQL.
	Bucket  string
	Timeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.Database == "" {
		c.Database = "orientation_db"
	}
	if c.Collection == "" {
		c.Collection = "files"
	}
	if c.Bucket == "" {
		c.Bucket = "fs"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Open connects the backend named by config.Backend.
func Open(ctx context.Context, config Config) (types.MetadataStore, error) {
	switch config.Backend {
	case BackendMongo, "":
		return NewMongoWithConfig(ctx, config)
	case BackendPostgres:
		return NewPostgresWithConfig(ctx, config)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.Backend)
	}
}
