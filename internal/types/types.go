package types

import (
	"context"
	"time"

	"github.com/xhad/fileseed/internal/models"
)

// Core interfaces
type MetadataStore interface {
	// DeleteAll removes every document from the metadata collection.
	DeleteAll(ctx context.Context) (int64, error)
	// Upsert sets file_type and uploaded_at on every document matching
	// filename, inserting one when nothing matches.
	Upsert(ctx context.Context, filename, fileType string, at time.Time) (models.UpsertResult, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]models.FileRecord, error)
	ListBinaries(ctx context.Context) ([]models.BinaryFile, error)
	Close(ctx context.Context) error
}

type Processor interface {
	Process(entries []models.SeedEntry) ([]models.SeedEntry, error)
}
