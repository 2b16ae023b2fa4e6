// internal/workflow/request.go
package workflow

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rovshanmuradov/token-launcher/internal/assets"
	"gopkg.in/yaml.v3"
)

// CreateRequest is the YAML form of a create command.
type CreateRequest struct {
	Name        string `yaml:"name"`
	Symbol      string `yaml:"symbol"`
	Decimals    uint8  `yaml:"decimals"`
	Supply      string `yaml:"supply"`
	Description string `yaml:"description"`
	Website     string `yaml:"website"`
	// Image is a file path, relative to the request file unless absolute.
	Image string `yaml:"image"`
}

// LoadCreateRequest reads a YAML request file and the image it points to.
func LoadCreateRequest(path string) (CreateTokenCommand, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CreateTokenCommand{}, fmt.Errorf("failed to read request file: %w", err)
	}

	var req CreateRequest
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return CreateTokenCommand{}, fmt.Errorf("failed to parse request file %s: %w", path, err)
	}
	if req.Supply == "" {
		req.Supply = "0"
	}

	cmd := CreateTokenCommand{
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description,
		Website:     req.Website,
		Decimals:    req.Decimals,
		Supply:      req.Supply,
	}
	if req.Image == "" {
		return cmd, nil
	}

	imagePath := req.Image
	if !filepath.IsAbs(imagePath) {
		imagePath = filepath.Join(filepath.Dir(path), imagePath)
	}
	img, err := LoadImage(imagePath)
	if err != nil {
		return CreateTokenCommand{}, err
	}
	cmd.Image = img
	return cmd, nil
}

// LoadImage reads an image file and infers its content type from the
// extension, falling back to content sniffing.
func LoadImage(path string) (assets.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assets.Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return assets.Image{Data: data, ContentType: contentType}, nil
}
