package filestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"doctools/internal/model"
	"doctools/internal/storage"
)

const objectPrefix = "unlocked"

// ObjectStore keeps the index in memory and the PDF bytes in an S3-compatible bucket.
// An entry is removed from the index before its object is deleted, so a reader either
// gets the whole entry or ErrNotFound.
type ObjectStore struct {
	objects storage.Storage

	mu      sync.RWMutex
	index   map[string]model.ProcessedFile // Content is always nil here
	pending map[string]struct{}            // ids whose upload is in flight
}

// NewObjectStore returns an ObjectStore writing through objects.
func NewObjectStore(objects storage.Storage) *ObjectStore {
	return &ObjectStore{
		objects: objects,
		index:   make(map[string]model.ProcessedFile),
		pending: make(map[string]struct{}),
	}
}

var _ Store = (*ObjectStore)(nil)

func objectKey(id string) string {
	return path.Join(objectPrefix, id+".pdf")
}

// Save reserves the id before uploading so a concurrent Save with the same id fails without
// touching the bucket. The entry becomes visible only once the upload succeeded.
func (s *ObjectStore) Save(ctx context.Context, f *model.ProcessedFile) error {
	if f == nil || f.ID == "" {
		return ErrInvalidFile
	}
	if err := s.reserve(f.ID); err != nil {
		return err
	}

	_, err := s.objects.Put(ctx, objectKey(f.ID), bytes.NewReader(f.Content), storage.PutObjectOptions{
		Size:        f.Size(),
		ContentType: "application/pdf",
		Metadata:    map[string]string{"original-filename": f.OriginalFilename},
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, f.ID)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}

	meta := *f
	meta.Content = nil
	s.index[f.ID] = meta
	return nil
}

func (s *ObjectStore) reserve(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[id]; exists {
		return ErrDuplicateID
	}
	if _, inFlight := s.pending[id]; inFlight {
		return ErrDuplicateID
	}
	s.pending[id] = struct{}{}
	return nil
}

func (s *ObjectStore) Get(ctx context.Context, id string) (*model.ProcessedFile, error) {
	s.mu.RLock()
	meta, ok := s.index[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	rc, _, err := s.objects.Get(ctx, objectKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer rc.Close()

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	meta.Content = content
	return &meta, nil
}

func (s *ObjectStore) Has(_ context.Context, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *ObjectStore) Sweep(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.mu.Lock()
	var expired []string
	for id, meta := range s.index {
		if meta.CreatedAt.Before(cutoff) {
			delete(s.index, id)
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range expired {
		if err := s.objects.Delete(ctx, objectKey(id)); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	return expired, errors.Join(errs...)
}

func (s *ObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.index)
}

// PurgeOrphans deletes objects under the store's prefix that the index does not know about.
// The index lives in memory, so after a restart every object left in the bucket is an orphan
// the reaper would never reach. It returns how many objects were deleted.
func (s *ObjectStore) PurgeOrphans(ctx context.Context) (int, error) {
	listed, err := s.objects.List(ctx, objectPrefix+"/")
	if err != nil {
		return 0, fmt.Errorf("list objects: %w", err)
	}

	known := make(map[string]struct{})
	s.mu.RLock()
	for id := range s.index {
		known[objectKey(id)] = struct{}{}
	}
	for id := range s.pending {
		known[objectKey(id)] = struct{}{}
	}
	s.mu.RUnlock()

	var (
		purged int
		errs   []error
	)
	for _, obj := range listed {
		if _, ok := known[obj.Key]; ok {
			continue
		}
		if err := s.objects.Delete(ctx, obj.Key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", obj.Key, err))
			continue
		}
		purged++
	}
	return purged, errors.Join(errs...)
}
