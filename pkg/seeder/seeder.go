// Package seeder resets a file metadata collection to a configured list of
// (filename, file_type) records.
//
// A run clears the collection and then upserts each entry in order, keyed
// by filename. There is no transaction: a failing step stops the run and
// the upserts already applied stay in place.
package seeder

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

const (
	StepClear  = "clear"
	StepUpsert = "upsert"
)

// StepError reports which step of a run failed.
type StepError struct {
	Step     string
	Index    int
	Filename string
	Err      error
}

func (e *StepError) Error() string {
	if e.Step == StepClear {
		return fmt.Sprintf("seed %s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("seed %s #%d (%s): %v", e.Step, e.Index, e.Filename, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type SeederConfig struct {
	// RateLimit caps upserts per second. Zero means unlimited.
	RateLimit  float64
	OnProgress func(entry models.SeedEntry)
	Now        func() time.Time
}

type Seeder struct {
	config  SeederConfig
	store   types.MetadataStore
	limiter *rate.Limiter
}

// Report summarizes a completed run.
type Report struct {
	Deleted  int64
	Results  []models.UpsertResult
	Inserted int64
	Updated  int64
	Elapsed  time.Duration
}

func NewWithConfig(store types.MetadataStore, config SeederConfig) *Seeder {
	if config.Now == nil {
		config.Now = time.Now
	}

	s := &Seeder{
		config: config,
		store:  store,
	}
	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return s
}

// Seed clears the collection and upserts every entry in order.
func (s *Seeder) Seed(ctx context.Context, entries []models.SeedEntry) (*Report, error) {
	start := s.config.Now()
	report := &Report{
		Results: make([]models.UpsertResult, 0, len(entries)),
	}

	deleted, err := s.store.DeleteAll(ctx)
	if err != nil {
		return report, &StepError{Step: StepClear, Err: err}
	}
	report.Deleted = deleted

	for i, entry := range entries {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return report, &StepError{Step: StepUpsert, Index: i, Filename: entry.Filename, Err: err}
			}
		}

		res, err := s.store.Upsert(ctx, entry.Filename, entry.FileType, s.config.Now())
		if err != nil {
			return report, &StepError{Step: StepUpsert, Index: i, Filename: entry.Filename, Err: err}
		}

		report.Results = append(report.Results, res)
		report.Inserted += res.Upserted
		if res.Upserted == 0 {
			report.Updated += res.Matched
		}

		if s.config.OnProgress != nil {
			s.config.OnProgress(entry)
		}
	}

	report.Elapsed = s.config.Now().Sub(start)
	return report, nil
}

// Verify checks that the collection holds exactly one document per
// distinct filename in entries, carrying the type of the last entry for
// that filename, and nothing else.
func (s *Seeder) Verify(ctx context.Context, entries []models.SeedEntry) error {
	want := make(map[string]string, len(entries))
	for _, entry := range entries {
		want[entry.Filename] = entry.FileType
	}

	records, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	seen := make(map[string]int, len(records))
	for _, rec := range records {
		fileType, ok := want[rec.Filename]
		if !ok {
			return fmt.Errorf("unexpected record %q", rec.Filename)
		}
		if rec.FileType != fileType {
			return fmt.Errorf("record %q has file_type %q, want %q", rec.Filename, rec.FileType, fileType)
		}
		seen[rec.Filename]++
	}

	for filename := range want {
		switch seen[filename] {
		case 1:
		case 0:
			return fmt.Errorf("missing record %q", filename)
		default:
			return fmt.Errorf("record %q stored %d times", filename, seen[filename])
		}
	}

	return nil
}
