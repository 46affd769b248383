package filestore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doctools/internal/storage"
	storeMocks "doctools/internal/storage/mocks"
)

func TestObjectStore_SaveGet(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)
	f := newFile("abc", time.Now())

	objects.On("Put", ctx, "unlocked/abc.pdf", mock.Anything, storage.PutObjectOptions{
		Size:        f.Size(),
		ContentType: "application/pdf",
		Metadata:    map[string]string{"original-filename": "abc.pdf"},
	}).Return(storage.ObjectInfo{Key: "unlocked/abc.pdf"}, nil).Once()
	objects.On("Get", ctx, "unlocked/abc.pdf").
		Return(io.NopCloser(bytes.NewReader(f.Content)), storage.ObjectInfo{}, nil).Once()

	require.NoError(t, s.Save(ctx, f))
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(ctx, "abc"))

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, f.Content, got.Content)
	assert.Equal(t, f.OriginalFilename, got.OriginalFilename)

	assert.ErrorIs(t, s.Save(ctx, f), ErrDuplicateID)
	objects.AssertExpectations(t)
}

func TestObjectStore_SaveFailureLeavesNoEntry(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)

	objects.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{}, errors.New("bucket offline")).Once()

	err := s.Save(ctx, newFile("x", time.Now()))
	assert.ErrorContains(t, err, "put object: bucket offline")
	assert.Equal(t, 0, s.Len())

	// the failed upload released its reservation
	objects.On("Put", ctx, "unlocked/x.pdf", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "unlocked/x.pdf"}, nil).Once()
	require.NoError(t, s.Save(ctx, newFile("x", time.Now())))
	assert.True(t, s.Has(ctx, "x"))
	objects.AssertExpectations(t)
}

func TestObjectStore_ConcurrentSaveSameID(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)

	started := make(chan struct{})
	release := make(chan struct{})
	objects.On("Put", ctx, "unlocked/dup.pdf", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(storage.ObjectInfo{Key: "unlocked/dup.pdf"}, nil).Once()

	first := make(chan error, 1)
	go func() { first <- s.Save(ctx, newFile("dup", time.Now())) }()
	<-started

	assert.False(t, s.Has(ctx, "dup"), "an in-flight upload is not visible yet")
	assert.ErrorIs(t, s.Save(ctx, newFile("dup", time.Now())), ErrDuplicateID)

	close(release)
	require.NoError(t, <-first)
	assert.True(t, s.Has(ctx, "dup"))
	objects.AssertNumberOfCalls(t, "Put", 1)
}

func TestObjectStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)

	_, err := s.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)

	// Indexed but the object vanished underneath.
	objects.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil).Once()
	objects.On("Get", ctx, "unlocked/gone.pdf").Return(nil, storage.ObjectInfo{}, storage.ErrObjectNotFound).Once()
	require.NoError(t, s.Save(ctx, newFile("gone", time.Now())))

	_, err = s.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestObjectStore_SweepContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)
	base := time.Now()

	objects.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, nil)
	require.NoError(t, s.Save(ctx, newFile("bad", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, newFile("good", base.Add(-2*time.Hour))))
	require.NoError(t, s.Save(ctx, newFile("fresh", base)))

	objects.On("Delete", ctx, "unlocked/bad.pdf").Return(errors.New("permission denied")).Once()
	objects.On("Delete", ctx, "unlocked/good.pdf").Return(nil).Once()

	removed, err := s.Sweep(ctx, base.Add(-time.Hour))
	assert.ErrorContains(t, err, "delete bad: permission denied")
	assert.ElementsMatch(t, []string{"bad", "good"}, removed)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(ctx, "fresh"))
	objects.AssertExpectations(t)
}

func TestObjectStore_PurgeOrphans(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)

	objects.On("Put", ctx, "unlocked/live.pdf", mock.Anything, mock.Anything).
		Return(storage.ObjectInfo{Key: "unlocked/live.pdf"}, nil).Once()
	require.NoError(t, s.Save(ctx, newFile("live", time.Now())))

	objects.On("List", ctx, "unlocked/").Return([]storage.ObjectInfo{
		{Key: "unlocked/live.pdf"},
		{Key: "unlocked/stale-1.pdf"},
		{Key: "unlocked/stale-2.pdf"},
	}, nil).Once()
	objects.On("Delete", ctx, "unlocked/stale-1.pdf").Return(nil).Once()
	objects.On("Delete", ctx, "unlocked/stale-2.pdf").Return(errors.New("access denied")).Once()

	purged, err := s.PurgeOrphans(ctx)

	assert.Equal(t, 1, purged)
	assert.ErrorContains(t, err, "delete unlocked/stale-2.pdf: access denied")
	assert.True(t, s.Has(ctx, "live"))
	objects.AssertExpectations(t)
}

func TestObjectStore_PurgeOrphansListFailure(t *testing.T) {
	ctx := context.Background()
	objects := new(storeMocks.MockStorage)
	s := NewObjectStore(objects)
	objects.On("List", ctx, "unlocked/").Return(nil, errors.New("bucket offline")).Once()

	purged, err := s.PurgeOrphans(ctx)

	assert.Zero(t, purged)
	assert.ErrorContains(t, err, "list objects: bucket offline")
}
