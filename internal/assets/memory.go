// internal/assets/memory.go
package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// MemoryScheme prefixes URIs produced by MemoryStore.
const MemoryScheme = "memory://"

// Object is a stored blob with its labels.
type Object struct {
	URI         string
	Data        []byte
	ContentType string
	Tags        []Tag
}

// MemoryStore is an in-process content-addressed Store used for dry runs and
// tests. It records the order of uploads.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	order   []string
	fail    error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

// FailWith makes every subsequent Upload return err. nil clears it.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *MemoryStore) Upload(ctx context.Context, data []byte, contentType string, tags []Tag) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}

	sum := sha256.Sum256(data)
	uri := MemoryScheme + hex.EncodeToString(sum[:])
	s.objects[uri] = Object{
		URI:         uri,
		Data:        append([]byte(nil), data...),
		ContentType: contentType,
		Tags:        append([]Tag(nil), tags...),
	}
	s.order = append(s.order, uri)
	return uri, nil
}

// Get returns a stored object by URI.
func (s *MemoryStore) Get(uri string) (Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[uri]
	if !ok {
		return Object{}, ErrNotFound
	}
	return obj, nil
}

// Uploads returns the URIs in upload order, duplicates included.
func (s *MemoryStore) Uploads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}
