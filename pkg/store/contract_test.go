package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

// fixtures writes documents the store itself never produces.
type fixtures struct {
	insertWithExtra func(t *testing.T, filename, fileType string, extra map[string]interface{})
	addBinary       func(t *testing.T, file models.BinaryFile)
}

func runStoreContract(t *testing.T, s types.MetadataStore, fx fixtures) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("upsert inserts when nothing matches", func(t *testing.T) {
		_, err := s.DeleteAll(ctx)
		require.NoError(t, err)

		res, err := s.Upsert(ctx, "Orientation Info.docx", "docx", at)
		require.NoError(t, err)
		assert.Equal(t, int64(0), res.Matched)
		assert.Equal(t, int64(1), res.Upserted)

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Orientation Info.docx", records[0].Filename)
		assert.Equal(t, "docx", records[0].FileType)
		assert.True(t, at.Equal(records[0].UploadedAt))
		assert.False(t, records[0].ID.IsZero())
	})

	t.Run("upsert updates in place", func(t *testing.T) {
		later := at.Add(time.Hour)
		res, err := s.Upsert(ctx, "Orientation Info.docx", "pdf", later)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.Matched)
		assert.Equal(t, int64(0), res.Upserted)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "pdf", records[0].FileType)
		assert.True(t, later.Equal(records[0].UploadedAt))
	})

	t.Run("upsert leaves other fields alone", func(t *testing.T) {
		_, err := s.DeleteAll(ctx)
		require.NoError(t, err)

		fx.insertWithExtra(t, "index_faiss", "bin", map[string]interface{}{"language": "en"})

		_, err = s.Upsert(ctx, "index_faiss", "faiss", at)
		require.NoError(t, err)

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "faiss", records[0].FileType)
		assert.Equal(t, "en", records[0].Extra["language"])
	})

	t.Run("upsert updates every match", func(t *testing.T) {
		_, err := s.DeleteAll(ctx)
		require.NoError(t, err)

		fx.insertWithExtra(t, "index_pkl", "a", nil)
		fx.insertWithExtra(t, "index_pkl", "b", nil)

		res, err := s.Upsert(ctx, "index_pkl", "pkl", at)
		require.NoError(t, err)
		assert.Equal(t, int64(2), res.Matched)

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, rec := range records {
			assert.Equal(t, "pkl", rec.FileType)
		}
	})

	t.Run("delete all reports count", func(t *testing.T) {
		n, err := s.DeleteAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	t.Run("list binaries", func(t *testing.T) {
		uploaded := time.Date(2025, 2, 14, 12, 0, 0, 0, time.UTC)
		fx.addBinary(t, models.BinaryFile{Filename: "en_index.faiss", Length: 4096, UploadDate: uploaded})

		files, err := s.ListBinaries(ctx)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, "en_index.faiss", files[0].Filename)
		assert.Equal(t, int64(4096), files[0].Length)
		assert.True(t, uploaded.Equal(files[0].UploadDate))
	})
}
