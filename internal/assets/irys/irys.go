// Package irys uploads objects to an Irys-compatible HTTP uploader.
package irys

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"go.uber.org/zap"
)

const (
	DefaultGateway  = "https://gateway.irys.xyz"
	defaultTimeout  = 30 * time.Second
	tagHeaderPrefix = "X-Tag-"
)

// Uploader POSTs bytes to <baseURL>/upload. Tags travel as X-Tag-<name> headers.
type Uploader struct {
	baseURL    string
	gateway    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Uploader)

func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) { u.httpClient = c }
}

func WithGateway(gateway string) Option {
	return func(u *Uploader) { u.gateway = strings.TrimRight(gateway, "/") }
}

func NewUploader(baseURL, apiKey string, logger *zap.Logger, opts ...Option) *Uploader {
	u := &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		gateway: DefaultGateway,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.Named("irys"),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type uploadResponse struct {
	ID  string `json:"id"`
	URI string `json:"uri"`
}

// Upload implements assets.Store.
func (u *Uploader) Upload(ctx context.Context, data []byte, contentType string, tags []assets.Tag) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}
	for _, t := range tags {
		req.Header.Add(tagHeaderPrefix+t.Name, t.Value)
	}

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.New(strings.TrimSpace(string(body)))
	}

	var out uploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}

	uri := out.URI
	if uri == "" {
		if out.ID == "" {
			return "", errors.New("upload response has neither uri nor id")
		}
		uri = u.gateway + "/" + out.ID
	}

	u.logger.Debug("object uploaded",
		zap.String("uri", uri),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)))
	return uri, nil
}
