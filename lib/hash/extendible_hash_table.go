// Package hash implements an extendible hash table: a directory of bucket
// pointers addressed by the low bits of a key's hash, where buckets split
// and the directory doubles only when a bucket actually overflows.
package hash

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Hashable is any key type the table can hash. PageID and the other small
// integer ids in this module all satisfy it via hashKey.
type Hashable interface {
	comparable
}

type entry[K Hashable, V any] struct {
	key   K
	value V
}

// bucket holds up to capacity entries and the local depth it was split to.
// Buckets are shared by pointer between directory slots that haven't been
// split apart yet; once nothing references a bucket anymore the garbage
// collector reclaims it; there's no manual refcounting.
type bucket[K Hashable, V any] struct {
	localDepth int
	capacity   int
	entries    []entry[K, V]
}

func newBucket[K Hashable, V any](localDepth, capacity int) *bucket[K, V] {
	return &bucket[K, V]{localDepth: localDepth, capacity: capacity}
}

func (b *bucket[K, V]) find(key K) (V, bool) {
	for _, e := range b.entries {
		if e.key == key {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

func (b *bucket[K, V]) remove(key K) bool {
	for i, e := range b.entries {
		if e.key == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (b *bucket[K, V]) insertOrUpdate(key K, val V) bool {
	for i, e := range b.entries {
		if e.key == key {
			b.entries[i].value = val
			return true
		}
	}
	if len(b.entries) >= b.capacity {
		return false
	}
	b.entries = append(b.entries, entry[K, V]{key: key, value: val})
	return true
}

func (b *bucket[K, V]) isFull() bool {
	return len(b.entries) >= b.capacity
}

// Table is a generic extendible hash table mapping comparable keys to
// values of any type, sized to the bucket capacity it's constructed with.
type Table[K Hashable, V any] struct {
	mu          sync.RWMutex
	globalDepth int
	bucketSize  int
	directory   []*bucket[K, V]
	hashKey     func(K) uint64
}

// New constructs a table with one bucket at global depth 0. hashKey maps a
// key to a 64-bit hash; callers with a non-integer key type must supply
// one, otherwise use the NewInt32Keyed helper below.
func New[K Hashable, V any](bucketSize int, hashKey func(K) uint64) *Table[K, V] {
	t := &Table[K, V]{
		bucketSize: bucketSize,
		hashKey:    hashKey,
		directory:  []*bucket[K, V]{newBucket[K, V](0, bucketSize)},
	}
	return t
}

// NewInt32Keyed builds a table keyed by any ~int32 type (PageID, FrameID, …),
// hashing the key's bytes with xxhash.
func NewInt32Keyed[K ~int32, V any](bucketSize int) *Table[K, V] {
	return New[K, V](bucketSize, func(k K) uint64 {
		var buf [4]byte
		v := uint32(k)
		buf[0] = byte(v)
		buf[1] = byte(v >> 8)
		buf[2] = byte(v >> 16)
		buf[3] = byte(v >> 24)
		return xxhash.Sum64(buf[:])
	})
}

func (t *Table[K, V]) directoryIndex(h uint64) uint64 {
	mask := uint64(1)<<uint(t.globalDepth) - 1
	return h & mask
}

// Get looks up key, reporting whether it was present.
func (t *Table[K, V]) Get(key K) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := t.directoryIndex(t.hashKey(key))
	return t.directory[idx].find(key)
}

// Remove deletes key, reporting whether it was present.
func (t *Table[K, V]) Remove(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.directoryIndex(t.hashKey(key))
	return t.directory[idx].remove(key)
}

// Insert adds or updates key→val, splitting the owning bucket (and doubling
// the directory if needed) as many times as it takes to make room.
func (t *Table[K, V]) Insert(key K, val V) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		idx := t.directoryIndex(t.hashKey(key))
		b := t.directory[idx]
		if b.insertOrUpdate(key, val) {
			return
		}
		t.splitBucket(idx)
	}
}

// splitBucket splits the bucket at directory slot idx, doubling the
// directory first if the bucket's local depth has caught up to the global
// depth, then redistributing its entries by the newly significant bit.
func (t *Table[K, V]) splitBucket(idx uint64) {
	b := t.directory[idx]

	if b.localDepth == t.globalDepth {
		t.directory = append(t.directory, t.directory...)
		t.globalDepth++
	}

	newLocalDepth := b.localDepth + 1
	splitBit := uint64(1) << uint(b.localDepth)

	sibling := newBucket[K, V](newLocalDepth, t.bucketSize)
	b.localDepth = newLocalDepth

	oldEntries := b.entries
	b.entries = nil

	for _, e := range oldEntries {
		h := t.hashKey(e.key)
		if h&splitBit != 0 {
			sibling.entries = append(sibling.entries, e)
		} else {
			b.entries = append(b.entries, e)
		}
	}

	for i, ptr := range t.directory {
		if ptr != b {
			continue
		}
		if uint64(i)&splitBit != 0 {
			t.directory[i] = sibling
		}
	}
}

// GlobalDepth returns the directory's current global depth.
func (t *Table[K, V]) GlobalDepth() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.globalDepth
}

// LocalDepth returns the local depth of the bucket key would land in.
func (t *Table[K, V]) LocalDepth(key K) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	idx := t.directoryIndex(t.hashKey(key))
	return t.directory[idx].localDepth
}

// Size returns the total number of entries across all buckets.
func (t *Table[K, V]) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[*bucket[K, V]]bool)
	n := 0
	for _, b := range t.directory {
		if seen[b] {
			continue
		}
		seen[b] = true
		n += len(b.entries)
	}
	return n
}

// NumBuckets returns the number of distinct buckets in the directory,
// counting a bucket shared by multiple directory slots only once.
func (t *Table[K, V]) NumBuckets() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := make(map[*bucket[K, V]]bool)
	for _, b := range t.directory {
		seen[b] = true
	}
	return len(seen)
}
