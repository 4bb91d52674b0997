package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

// PostgresStore keeps metadata documents in a table shaped like the
// MongoDB collection. Fields other than filename, file_type and uploaded_at
// live in the metadata JSONB column and are never written by Upsert.
type PostgresStore struct {
	config   Config
	pool     *pgxpool.Pool
	files    string
	binaries string
}

var _ types.MetadataStore = (*PostgresStore)(nil)

func NewPostgresWithConfig(ctx context.Context, config Config) (*PostgresStore, error) {
	config.applyDefaults()

	pool, err := pgxpool.New(ctx, config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{
		config:   config,
		pool:     pool,
		files:    pgx.Identifier{config.Collection}.Sanitize(),
		binaries: pgx.Identifier{config.Bucket + "_files"}.Sanitize(),
	}

	if err := s.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) initialize(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	createFiles := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			file_type TEXT,
			uploaded_at TIMESTAMPTZ,
			metadata JSONB
		)`, s.files)

	if _, err := s.pool.Exec(ctx, createFiles); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (filename)`,
		pgx.Identifier{s.config.Collection + "_filename_idx"}.Sanitize(), s.files)

	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (s *PostgresStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.files))
	if err != nil {
		return 0, fmt.Errorf("failed to clear %s: %w", s.config.Collection, err)
	}
	return tag.RowsAffected(), nil
}

// Upsert updates every row matching filename, or inserts one when none
// match. PostgreSQL rewrites every matched row, so Modified equals Matched.
func (s *PostgresStore) Upsert(ctx context.Context, filename, fileType string, at time.Time) (models.UpsertResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var res models.UpsertResult

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	update := fmt.Sprintf(`UPDATE %s SET file_type = $2, uploaded_at = $3 WHERE filename = $1`, s.files)
	tag, err := tx.Exec(ctx, update, filename, fileType, at)
	if err != nil {
		return res, fmt.Errorf("failed to upsert %s: %w", filename, err)
	}
	res.Matched = tag.RowsAffected()
	res.Modified = res.Matched

	if res.Matched == 0 {
		insert := fmt.Sprintf(`INSERT INTO %s (id, filename, file_type, uploaded_at) VALUES ($1, $2, $3, $4)`, s.files)
		if _, err := tx.Exec(ctx, insert, primitive.NewObjectID().Hex(), filename, fileType, at); err != nil {
			return res, fmt.Errorf("failed to upsert %s: %w", filename, err)
		}
		res.Upserted = 1
	}

	if err := tx.Commit(ctx); err != nil {
		return models.UpsertResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return res, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var n int64
	if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", s.files)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.config.Collection, err)
	}
	return n, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]models.FileRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	query := fmt.Sprintf(`
		SELECT id, filename, coalesce(file_type, ''), coalesce(uploaded_at, 'epoch'::timestamptz), metadata
		FROM %s`, s.files)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.config.Collection, err)
	}
	defer rows.Close()

	var records []models.FileRecord
	for rows.Next() {
		var (
			id  string
			rec models.FileRecord
		)
		if err := rows.Scan(&id, &rec.Filename, &rec.FileType, &rec.UploadedAt, &rec.Extra); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		// Rows written by other tools may carry non-ObjectID keys.
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			rec.ID = oid
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.config.Collection, err)
	}

	return records, nil
}

func (s *PostgresStore) ListBinaries(ctx context.Context) ([]models.BinaryFile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	// The binaries table belongs to whatever stores the file contents; a
	// database without it has no binaries.
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT filename, length, upload_date FROM %s", s.binaries))
	if isUndefinedTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s_files: %w", s.config.Bucket, err)
	}
	defer rows.Close()

	var files []models.BinaryFile
	for rows.Next() {
		var f models.BinaryFile
		if err := rows.Scan(&f.Filename, &f.Length, &f.UploadDate); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); isUndefinedTable(err) {
		return nil, nil
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s_files: %w", s.config.Bucket, err)
	}

	return files, nil
}

// SQLSTATE undefined_table
const undefinedTableCode = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTableCode
}

func (s *PostgresStore) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
