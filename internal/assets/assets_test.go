package assets

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rovshanmuradov/token-launcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestPublish_AssetBeforeDocument(t *testing.T) {
	store := NewMemoryStore()
	o := NewOrchestrator(store, zaptest.NewLogger(t))

	img := &Image{Data: []byte{0x89, 'P', 'N', 'G'}, ContentType: "image/png"}
	res, err := o.Publish(context.Background(), img, MetadataDocument{Name: "Test", Symbol: "TST", Description: "d"}, []Tag{{Name: "App", Value: "launcher"}})
	require.NoError(t, err)

	uploads := store.Uploads()
	require.Len(t, uploads, 2)
	assert.Equal(t, res.ImageURI, uploads[0])
	assert.Equal(t, res.MetadataURI, uploads[1])

	imgObj, err := store.Get(res.ImageURI)
	require.NoError(t, err)
	v, _ := TagValue(imgObj.Tags, TagAssetType)
	assert.Equal(t, AssetTypeImage, v)
	v, _ = TagValue(imgObj.Tags, TagContentType)
	assert.Equal(t, "image/png", v)
	v, _ = TagValue(imgObj.Tags, "App")
	assert.Equal(t, "launcher", v)

	docObj, err := store.Get(res.MetadataURI)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, docObj.ContentType)
	v, _ = TagValue(docObj.Tags, TagAssetType)
	assert.Equal(t, AssetTypeMetadata, v)

	var doc MetadataDocument
	require.NoError(t, json.Unmarshal(docObj.Data, &doc))
	assert.Equal(t, res.ImageURI, doc.Image)
	require.Len(t, doc.Properties.Files, 1)
	assert.Equal(t, File{URI: res.ImageURI, Type: "image/png"}, doc.Properties.Files[0])
	assert.Equal(t, "d", doc.Description)
}

func TestPublish_Observer(t *testing.T) {
	var seen []string
	o := NewOrchestrator(NewMemoryStore(), zaptest.NewLogger(t)).Observe(func(assetType string) {
		seen = append(seen, assetType)
	})

	_, err := o.Publish(context.Background(), &Image{Data: []byte{1}, ContentType: "image/png"}, MetadataDocument{Name: "T"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{AssetTypeImage, AssetTypeMetadata}, seen)
}

func TestPublish_WithoutImage(t *testing.T) {
	store := NewMemoryStore()
	o := NewOrchestrator(store, zaptest.NewLogger(t))

	res, err := o.Publish(context.Background(), nil, MetadataDocument{Name: "Test", Symbol: "TST"}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.ImageURI)
	assert.Len(t, store.Uploads(), 1)
}

func TestPublish_UploadFailure(t *testing.T) {
	store := NewMemoryStore()
	raw := errors.New("402 payment required: balance too low")
	store.FailWith(raw)
	o := NewOrchestrator(store, zaptest.NewLogger(t))

	_, err := o.Publish(context.Background(), &Image{Data: []byte{1}, ContentType: "image/png"}, MetadataDocument{Name: "T"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUpload)
	assert.ErrorIs(t, err, raw, "raw store error is preserved")
	assert.Empty(t, store.Uploads())
}

func TestStoreAsset_Validation(t *testing.T) {
	o := NewOrchestrator(NewMemoryStore(), zaptest.NewLogger(t))

	_, err := o.StoreAsset(context.Background(), nil, "image/png", nil)
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = o.StoreAsset(context.Background(), []byte{1}, "", nil)
	assert.ErrorIs(t, err, types.ErrValidation)
}

func TestBaseTagsCannotBeOverridden(t *testing.T) {
	tags := withBaseTags("image/png", AssetTypeImage, []Tag{{Name: TagAssetType, Value: "other"}, {Name: "X", Value: "y"}})
	assert.Equal(t, []Tag{
		{Name: TagContentType, Value: "image/png"},
		{Name: TagAssetType, Value: AssetTypeImage},
		{Name: "X", Value: "y"},
	}, tags)
}
