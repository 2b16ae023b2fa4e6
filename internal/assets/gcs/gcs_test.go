package gcs

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/googleapi"
)

type fakeBucket struct {
	objects  map[string][]byte
	metadata map[string]map[string]string
	err      error
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string][]byte{}, metadata: map[string]map[string]string{}}
}

func (b *fakeBucket) Name() string { return "launcher-assets" }

func (b *fakeBucket) Create(_ context.Context, object, contentType string, metadata map[string]string, data []byte) error {
	if b.err != nil {
		return b.err
	}
	if _, ok := b.objects[object]; ok {
		return errObjectExists
	}
	b.objects[object] = data
	b.metadata[object] = metadata
	return nil
}

func TestUpload_ContentAddressed(t *testing.T) {
	b := newFakeBucket()
	s := newStore(b, zaptest.NewLogger(t))

	tags := []assets.Tag{{Name: assets.TagContentType, Value: "image/png"}, {Name: assets.TagAssetType, Value: "image"}}
	uri, err := s.Upload(context.Background(), []byte("img"), "image/png", tags)
	require.NoError(t, err)
	assert.Equal(t, PublicURL("launcher-assets", ObjectName([]byte("img"))), uri)
	assert.Equal(t, "image", b.metadata[ObjectName([]byte("img"))][assets.TagAssetType])

	again, err := s.Upload(context.Background(), []byte("img"), "image/png", tags)
	require.NoError(t, err)
	assert.Equal(t, uri, again)
	assert.Len(t, b.objects, 1)
}

func TestUpload_BackendError(t *testing.T) {
	b := newFakeBucket()
	b.err = errors.New("googleapi: Error 403: forbidden")
	s := newStore(b, zaptest.NewLogger(t))

	_, err := s.Upload(context.Background(), []byte("x"), "image/png", nil)
	assert.Equal(t, b.err, err)
}

func TestIsPreconditionFailed(t *testing.T) {
	assert.True(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusPreconditionFailed}))
	assert.False(t, isPreconditionFailed(&googleapi.Error{Code: http.StatusForbidden}))
	assert.True(t, isPreconditionFailed(errors.New("conditionNotMet: Precondition Failed")))
}
