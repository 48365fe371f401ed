package blobstore

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ BlobStore = (*CachingStore)(nil)

// countingStore wraps a MemoryStore and counts backend ReadAt calls,
// so tests can tell cache hits from backend fetches.
type countingStore struct {
	*MemoryStore
	reads atomic.Int64
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.MemoryStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, reads: &s.reads}, nil
}

type countingBlob struct {
	Blob
	reads *atomic.Int64
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func testBlobContent(n int) []byte {
	content := make([]byte, n)
	for i := range content {
		content[i] = byte(i % 251)
	}
	return content
}

func TestCachingStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore()}
	content := testBlobContent(10_000)
	require.NoError(t, inner.Put(ctx, "snap", content))

	store := NewCachingStore(inner, NewBlockCache(1<<20), 1024)

	blob, err := store.Open(ctx, "snap")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), blob.Size())

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	require.NoError(t, blob.Close())

	backendReads := inner.reads.Load()
	assert.Positive(t, backendReads)

	// A second full read is served entirely from the cache.
	blob, err = store.Open(ctx, "snap")
	require.NoError(t, err)
	data, err = ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	require.NoError(t, blob.Close())

	assert.Equal(t, backendReads, inner.reads.Load())
}

func TestCachingBlobReadAt(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "snap", []byte("0123456789")))

	store := NewCachingStore(inner, NewBlockCache(1<<20), 4)
	blob, err := store.Open(ctx, "snap")
	require.NoError(t, err)
	defer blob.Close()

	// Spans two blocks.
	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("2345"), buf)

	// Past the end.
	big := make([]byte, 8)
	n, err = blob.ReadAt(ctx, big, 6)
	assert.Equal(t, 4, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCachingStoreInvalidation(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	require.NoError(t, inner.Put(ctx, "snap", []byte("old content")))

	cache := NewBlockCache(1 << 20)
	store := NewCachingStore(inner, cache, 1024)

	blob, err := store.Open(ctx, "snap")
	require.NoError(t, err)
	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("old content"), data)
	require.NoError(t, blob.Close())
	assert.Positive(t, cache.SizeBytes())

	// Overwriting must drop the stale blocks.
	require.NoError(t, store.Put(ctx, "snap", []byte("new content")))

	blob, err = store.Open(ctx, "snap")
	require.NoError(t, err)
	data, err = ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("new content"), data)
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "snap"))
	assert.Zero(t, cache.SizeBytes())
	_, err = store.Open(ctx, "snap")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBlockCacheEviction(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()
	content := testBlobContent(4096)
	require.NoError(t, inner.Put(ctx, "snap", content))

	// Room for two 1 KiB blocks only.
	cache := NewBlockCache(2048)
	store := NewCachingStore(inner, cache, 1024)

	blob, err := store.Open(ctx, "snap")
	require.NoError(t, err)
	defer blob.Close()

	data, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, content, data)
	assert.LessOrEqual(t, cache.SizeBytes(), int64(2048))

	// Evicted blocks are re-fetched transparently.
	data, err = ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}
