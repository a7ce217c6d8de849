// Package memory provides an in-memory ObjectStore used by tests and
// local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/opendaw/opendaw-mcp/internal/store"
)

type object struct {
	body         []byte
	contentType  string
	lastModified time.Time
}

// Store is a map-backed ObjectStore. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string]object

	// failing, when set, makes every operation return ErrUnavailable.
	// Tests use it to simulate store outages.
	failing bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{objects: map[string]object{}}
}

// SetFailing toggles simulated unavailability.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *Store) Put(_ context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return store.ErrUnavailable
	}
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = object{body: buf, contentType: contentType, lastModified: time.Now()}
	return nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, store.ErrUnavailable
	}
	obj, ok := s.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	buf := make([]byte, len(obj.body))
	copy(buf, obj.body)
	return buf, nil
}

func (s *Store) List(_ context.Context, prefix string) ([]store.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failing {
		return nil, store.ErrUnavailable
	}
	var infos []store.ObjectInfo
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, store.ObjectInfo{
				Key:          key,
				Size:         int64(len(obj.body)),
				LastModified: obj.lastModified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return store.ErrUnavailable
	}
	delete(s.objects, key)
	return nil
}
