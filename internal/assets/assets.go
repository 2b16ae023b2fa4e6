// Package assets stores token images and metadata documents off-chain before
// any on-chain instruction references them.
package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rovshanmuradov/token-launcher/internal/types"
	"go.uber.org/zap"
)

const (
	TagContentType = "Content-Type"
	TagAssetType   = "Asset-Type"

	AssetTypeImage    = "image"
	AssetTypeMetadata = "metadata"

	ContentTypeJSON = "application/json"
)

// Tag is a name/value label attached to a stored object.
type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Store is a content-addressable uploader. Implementations return a
// dereferenceable URI and must surface the backend's error unmodified.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string, tags []Tag) (string, error)
}

// Image is raw asset bytes with their MIME type.
type Image struct {
	Data        []byte
	ContentType string
}

// File is one entry of properties.files.
type File struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// Properties holds the document's file list.
type Properties struct {
	Files []File `json:"files"`
}

// MetadataDocument is the off-chain JSON referenced by the on-chain uri field.
type MetadataDocument struct {
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	ExternalURL string     `json:"external_url,omitempty"`
	Properties  Properties `json:"properties"`
}

// Result is the outcome of Publish.
type Result struct {
	ImageURI    string
	MetadataURI string
	Document    MetadataDocument
}

// Orchestrator runs the asset then document upload sequence.
type Orchestrator struct {
	store   Store
	logger  *zap.Logger
	observe func(assetType string)
}

func NewOrchestrator(store Store, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		logger: logger.Named("assets"),
	}
}

// Observe returns a copy of o that calls fn with the asset type before each
// upload Publish starts.
func (o *Orchestrator) Observe(fn func(assetType string)) *Orchestrator {
	cp := *o
	cp.observe = fn
	return &cp
}

func (o *Orchestrator) notify(assetType string) {
	if o.observe != nil {
		o.observe(assetType)
	}
}

// StoreAsset uploads raw bytes tagged as an image.
func (o *Orchestrator) StoreAsset(ctx context.Context, data []byte, contentType string, extra []Tag) (string, error) {
	if len(data) == 0 {
		return "", types.NewValidationError("store_asset", "asset data is empty")
	}
	if contentType == "" {
		return "", types.NewValidationError("store_asset", "asset content type is empty")
	}

	tags := withBaseTags(contentType, AssetTypeImage, extra)
	uri, err := o.store.Upload(ctx, data, contentType, tags)
	if err != nil {
		o.logger.Error("asset upload failed", zap.Int("size", len(data)), zap.Error(err))
		return "", types.NewUploadError("store_asset", err)
	}

	o.logger.Info("asset stored", zap.String("uri", uri), zap.Int("size", len(data)))
	return uri, nil
}

// StoreMetadataDocument JSON-encodes doc and uploads it.
func (o *Orchestrator) StoreMetadataDocument(ctx context.Context, doc MetadataDocument, extra []Tag) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", types.NewUploadError("store_metadata", fmt.Errorf("failed to encode metadata document: %w", err))
	}

	tags := withBaseTags(ContentTypeJSON, AssetTypeMetadata, extra)
	uri, err := o.store.Upload(ctx, body, ContentTypeJSON, tags)
	if err != nil {
		o.logger.Error("metadata upload failed", zap.String("name", doc.Name), zap.Error(err))
		return "", types.NewUploadError("store_metadata", err)
	}

	o.logger.Info("metadata document stored", zap.String("uri", uri))
	return uri, nil
}

// Publish uploads image (when non-nil) and then doc. The document's image
// and first file entry point at the uploaded image.
func (o *Orchestrator) Publish(ctx context.Context, image *Image, doc MetadataDocument, extra []Tag) (*Result, error) {
	res := &Result{}
	if image != nil {
		o.notify(AssetTypeImage)
		uri, err := o.StoreAsset(ctx, image.Data, image.ContentType, extra)
		if err != nil {
			return nil, err
		}
		res.ImageURI = uri
		doc.Image = uri
		doc.Properties.Files = append([]File{{URI: uri, Type: image.ContentType}}, doc.Properties.Files...)
	}

	o.notify(AssetTypeMetadata)
	uri, err := o.StoreMetadataDocument(ctx, doc, extra)
	if err != nil {
		return nil, err
	}
	res.MetadataURI = uri
	res.Document = doc
	return res, nil
}

func withBaseTags(contentType, assetType string, extra []Tag) []Tag {
	tags := make([]Tag, 0, len(extra)+2)
	tags = append(tags, Tag{Name: TagContentType, Value: contentType}, Tag{Name: TagAssetType, Value: assetType})
	for _, t := range extra {
		if t.Name == TagContentType || t.Name == TagAssetType {
			continue
		}
		tags = append(tags, t)
	}
	return tags
}

// TagValue returns the value of the first tag named name.
func TagValue(tags []Tag, name string) (string, bool) {
	for _, t := range tags {
		if t.Name == name {
			return t.Value, true
		}
	}
	return "", false
}

// ErrNotFound is returned by stores that support lookups.
var ErrNotFound = errors.New("object not found")
