package blobstore

import (
	"bytes"
	"container/list"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// defaultBlockSize is used when NewCachingStore is given a block size
// of zero or less. Snapshot reads are mostly sequential, so fairly
// large blocks keep the backend round-trip count low.
const defaultBlockSize = 64 * 1024

// BlockCache is a byte-capacity-bounded LRU cache of blob blocks,
// shared between all blobs opened through a CachingStore.
type BlockCache struct {
	mu       sync.Mutex
	capacity int64
	size     int64
	order    *list.List // front = most recently used
	entries  map[blockKey]*list.Element
}

type blockKey struct {
	name  string
	index int64
}

type blockEntry struct {
	key  blockKey
	data []byte
}

// NewBlockCache creates a cache holding at most capacity bytes of
// block data.
func NewBlockCache(capacity int64) *BlockCache {
	return &BlockCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[blockKey]*list.Element),
	}
}

func (c *BlockCache) get(key blockKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*blockEntry).data, true
}

func (c *BlockCache) set(key blockKey, data []byte) {
	if int64(len(data)) > c.capacity {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.size += int64(len(data)) - int64(len(el.Value.(*blockEntry).data))
		el.Value.(*blockEntry).data = data
		c.order.MoveToFront(el)
	} else {
		c.entries[key] = c.order.PushFront(&blockEntry{key: key, data: data})
		c.size += int64(len(data))
	}

	for c.size > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*blockEntry)
		c.order.Remove(oldest)
		delete(c.entries, entry.key)
		c.size -= int64(len(entry.data))
	}
}

// invalidate drops all cached blocks of the named blob.
func (c *BlockCache) invalidate(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for el := c.order.Front(); el != nil; {
		next := el.Next()
		entry := el.Value.(*blockEntry)
		if entry.key.name == name {
			c.order.Remove(el)
			delete(c.entries, entry.key)
			c.size -= int64(len(entry.data))
		}
		el = next
	}
}

// SizeBytes returns the number of block bytes currently cached.
func (c *BlockCache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// CachingStore wraps a BlobStore with a block-level read cache. It is
// meant for remote backends where repeated snapshot loads would
// otherwise re-fetch the same bytes. Writes pass through and
// invalidate the written blob's cached blocks.
type CachingStore struct {
	inner     BlobStore
	cache     *BlockCache
	blockSize int64
}

// NewCachingStore creates a read-through caching decorator over inner.
// blockSize defaults to 64 KiB if <= 0.
func NewCachingStore(inner BlobStore, cache *BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = defaultBlockSize
	}
	return &CachingStore{
		inner:     inner,
		cache:     cache,
		blockSize: blockSize,
	}
}

// Open opens a blob whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		size:      b.Size(),
		blockSize: s.blockSize,
	}, nil
}

// Create passes through to the inner store. The name is invalidated so
// an overwritten blob is never served from stale blocks.
func (s *CachingStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	s.cache.invalidate(name)
	return s.inner.Create(ctx, name)
}

// Put writes through and invalidates the blob's cached blocks.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.cache.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob and its cached blocks.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.cache.invalidate(name)
	return s.inner.Delete(ctx, name)
}

// List passes through to the inner store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// cachingBlob serves reads block by block, fetching missing blocks
// from the inner blob and caching them.
type cachingBlob struct {
	inner     Blob
	cache     *BlockCache
	name      string
	size      int64
	blockSize int64
}

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= b.size {
		return 0, io.EOF
	}

	total := 0
	for total < len(p) {
		pos := off + int64(total)
		if pos >= b.size {
			return total, io.EOF
		}

		block, err := b.fetchBlock(ctx, pos/b.blockSize)
		if err != nil {
			return total, err
		}

		within := pos % b.blockSize
		if within >= int64(len(block)) {
			return total, io.EOF
		}
		total += copy(p[total:], block[within:])
	}
	return total, nil
}

func (b *cachingBlob) fetchBlock(ctx context.Context, index int64) ([]byte, error) {
	key := blockKey{name: b.name, index: index}
	if data, ok := b.cache.get(key); ok {
		return data, nil
	}

	start := index * b.blockSize
	length := b.blockSize
	if start+length > b.size {
		length = b.size - start
	}

	buf := make([]byte, length)
	n, err := b.inner.ReadAt(ctx, buf, start)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	buf = buf[:n]

	if n > 0 {
		b.cache.set(key, buf)
	}
	return buf, nil
}

func (b *cachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := off + length
	if end > b.size {
		end = b.size
	}
	return io.NopCloser(&cachedSectionReader{blob: b, ctx: ctx, off: off, limit: end}), nil
}

func (b *cachingBlob) Size() int64 {
	return b.size
}

func (b *cachingBlob) Close() error {
	return b.inner.Close()
}

// cachedSectionReader adapts the ctx-based ReadAt to io.Reader for
// ReadRange.
type cachedSectionReader struct {
	blob  *cachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *cachedSectionReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
