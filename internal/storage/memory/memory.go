// Package memory is an in-process storage.Journal.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rovshanmuradov/token-launcher/internal/storage"
	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
)

type Journal struct {
	mu   sync.RWMutex
	rows map[string]models.Submission
	now  func() time.Time
}

func NewJournal() *Journal {
	return &Journal{
		rows: make(map[string]models.Submission),
		now:  time.Now,
	}
}

func (j *Journal) Record(_ context.Context, s *models.Submission) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	row := *s
	now := j.now().UTC()
	if prev, ok := j.rows[s.Signature]; ok {
		row.CreatedAt = prev.CreatedAt
	} else {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	j.rows[s.Signature] = row
	s.CreatedAt, s.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (j *Journal) UpdateStatus(_ context.Context, signature, status, errorMsg string, slot uint64) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	row, ok := j.rows[signature]
	if !ok {
		return storage.ErrNotFound
	}
	row.Status = status
	row.ErrorMessage = errorMsg
	if slot != 0 {
		row.Slot = slot
	}
	row.UpdatedAt = j.now().UTC()
	j.rows[signature] = row
	return nil
}

func (j *Journal) Get(_ context.Context, signature string) (*models.Submission, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	row, ok := j.rows[signature]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &row, nil
}

// ListByStatus returns rows with status, oldest first. limit <= 0 means all.
func (j *Journal) ListByStatus(_ context.Context, status string, limit int) ([]*models.Submission, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]*models.Submission, 0)
	for _, row := range j.rows {
		if row.Status != status {
			continue
		}
		r := row
		out = append(out, &r)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].Signature < out[b].Signature
		}
		return out[a].CreatedAt.Before(out[b].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
