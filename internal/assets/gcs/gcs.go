// Package gcs stores assets in a Google Cloud Storage bucket under
// content-addressed object names.
package gcs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

const publicBaseURL = "https://storage.googleapis.com"

var errObjectExists = errors.New("object already exists")

// bucket is the slice of a bucket handle the store needs.
type bucket interface {
	Name() string
	Create(ctx context.Context, object, contentType string, metadata map[string]string, data []byte) error
}

// Store implements assets.Store over a GCS bucket. Uploading identical
// bytes twice is a no-op that returns the same URL.
type Store struct {
	bucket bucket
	logger *zap.Logger
}

// New binds a store to bucketName using an existing client.
func New(client *storage.Client, bucketName string, logger *zap.Logger) *Store {
	return newStore(&gcsBucket{name: bucketName, h: client.Bucket(bucketName)}, logger)
}

func newStore(b bucket, logger *zap.Logger) *Store {
	return &Store{bucket: b, logger: logger.Named("gcs")}
}

// ObjectName is the content address of data.
func ObjectName(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// PublicURL returns the public URL of object in bucketName.
func PublicURL(bucketName, object string) string {
	return fmt.Sprintf("%s/%s/%s", publicBaseURL, bucketName, object)
}

func (s *Store) Upload(ctx context.Context, data []byte, contentType string, tags []assets.Tag) (string, error) {
	object := ObjectName(data)
	metadata := make(map[string]string, len(tags))
	for _, t := range tags {
		metadata[t.Name] = t.Value
	}

	err := s.bucket.Create(ctx, object, contentType, metadata, data)
	switch {
	case errors.Is(err, errObjectExists):
		s.logger.Debug("object already stored", zap.String("object", object))
	case err != nil:
		return "", err
	default:
		s.logger.Debug("object stored", zap.String("object", object), zap.Int("size", len(data)))
	}
	return PublicURL(s.bucket.Name(), object), nil
}

type gcsBucket struct {
	name string
	h    *storage.BucketHandle
}

func (b *gcsBucket) Name() string { return b.name }

func (b *gcsBucket) Create(ctx context.Context, object, contentType string, metadata map[string]string, data []byte) error {
	w := b.h.Object(object).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = metadata

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		if isPreconditionFailed(err) {
			return errObjectExists
		}
		return err
	}
	return nil
}

// isPreconditionFailed detects HTTP 412 from the DoesNotExist condition.
func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusPreconditionFailed
	}
	return strings.Contains(strings.ToLower(err.Error()), "precondition")
}
