// Package memory implements blob.Store with in-process maps. Intended for
// tests and development; contents are lost on restart.
package memory

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// object is a stored blob with its content type.
type object struct {
	data        []byte
	contentType string
}

// MemoryBlobStore implements blob.Store backed by a map.
//
// Thread Safety:
// All operations are guarded by a mutex and safe for concurrent use.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string]object
}

// NewMemoryBlobStore creates an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{
		objects: make(map[string]object),
	}
}

func (s *MemoryBlobStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read blob content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: data, contentType: contentType}
	return nil
}

// PresignedGetURL fabricates a memory:// URL carrying the expiry. There is
// nothing to fetch it from; tests assert on the shape.
func (s *MemoryBlobStore) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("blob %q not found", key)
	}

	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory://%s?expires=%d", url.PathEscape(key), expires), nil
}

func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryBlobStore) Healthcheck(ctx context.Context) error {
	return ctx.Err()
}

// Get returns a stored blob's content and content type. Test helper; not
// part of blob.Store.
func (s *MemoryBlobStore) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	return data, obj.contentType, true
}

// Len reports the number of stored blobs. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
