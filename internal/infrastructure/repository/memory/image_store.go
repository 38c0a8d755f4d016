package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// ImageStore keeps formation images in process memory. Test double for the
// S3-backed store.
type ImageStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewImageStore() *ImageStore {
	return &ImageStore{objects: make(map[string][]byte)}
}

func (s *ImageStore) Put(_ context.Context, key string, _ string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = append([]byte(nil), body...)
	return nil
}

func (s *ImageStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *ImageStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.objects, key)
	}
	return nil
}

// Len reports the number of stored objects.
func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}
