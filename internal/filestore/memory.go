package filestore

import (
	"context"
	"sync"
	"time"

	"doctools/internal/model"
)

// MemoryStore keeps everything in process memory; it is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]*model.ProcessedFile
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]*model.ProcessedFile)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Save(_ context.Context, f *model.ProcessedFile) error {
	if f == nil || f.ID == "" {
		return ErrInvalidFile
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.files[f.ID]; exists {
		return ErrDuplicateID
	}
	s.files[f.ID] = f
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.ProcessedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (s *MemoryStore) Has(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[id]
	return ok
}

func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for id, f := range s.files {
		if f.CreatedAt.Before(cutoff) {
			delete(s.files, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
