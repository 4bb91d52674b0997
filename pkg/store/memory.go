package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

// MemoryStore keeps metadata documents in process memory. Upsert follows
// the same update-many semantics as the database backends.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     []models.FileRecord
	binaries []models.BinaryFile
	closed   bool
}

var _ types.MetadataStore = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{}
}

// Insert adds a document as-is, assigning an ID when it has none.
func (m *MemoryStore) Insert(ctx context.Context, rec models.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	rec.Extra = copyExtra(rec.Extra)
	m.docs = append(m.docs, rec)
	return nil
}

// AddBinary registers a file in the simulated binary bucket.
func (m *MemoryStore) AddBinary(file models.BinaryFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binaries = append(m.binaries, file)
}

func (m *MemoryStore) DeleteAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	n := int64(len(m.docs))
	m.docs = nil
	return n, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, filename, fileType string, at time.Time) (models.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res models.UpsertResult
	if m.closed {
		return res, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	for i := range m.docs {
		doc := &m.docs[i]
		if doc.Filename != filename {
			continue
		}
		res.Matched++
		if doc.FileType != fileType || !doc.UploadedAt.Equal(at) {
			res.Modified++
		}
		doc.FileType = fileType
		doc.UploadedAt = at
	}

	if res.Matched == 0 {
		m.docs = append(m.docs, models.FileRecord{
			ID:         primitive.NewObjectID(),
			Filename:   filename,
			FileType:   fileType,
			UploadedAt: at,
		})
		res.Upserted = 1
	}

	return res, nil
}

func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, ErrClosed
	}
	return int64(len(m.docs)), nil
}

func (m *MemoryStore) List(ctx context.Context) ([]models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	out := make([]models.FileRecord, len(m.docs))
	for i, doc := range m.docs {
		doc.Extra = copyExtra(doc.Extra)
		out[i] = doc
	}
	return out, nil
}

func (m *MemoryStore) ListBinaries(ctx context.Context) ([]models.BinaryFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	out := make([]models.BinaryFile, len(m.binaries))
	copy(out, m.binaries)
	return out, nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func copyExtra(extra map[string]interface{}) map[string]interface{} {
	if extra == nil {
		return nil
	}
	out := make(map[string]interface{}, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}
