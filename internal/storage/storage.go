// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/token-launcher/internal/storage/models"
)

// ErrNotFound is returned when no submission has the requested signature.
var ErrNotFound = errors.New("submission not found")

// Journal records submitted transactions so ambiguous outcomes can be
// resolved later without resubmitting.
type Journal interface {
	Record(ctx context.Context, s *models.Submission) error
	UpdateStatus(ctx context.Context, signature, status, errorMsg string, slot uint64) error
	Get(ctx context.Context, signature string) (*models.Submission, error)
	ListByStatus(ctx context.Context, status string, limit int) ([]*models.Submission, error)
}
