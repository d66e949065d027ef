package buffer

import (
	"fmt"
	"sync"

	"pagecache/lib"
)

// frameState tracks a frame's last-k access history and whether the buffer
// pool manager currently allows it to be evicted.
type frameState struct {
	history   []int64 // oldest access first, capped at k entries
	evictable bool
}

// LRUKReplacer picks an eviction victim among evictable frames by backward
// k-distance: the frame whose k-th most recent access is furthest in the
// past. A frame with fewer than k recorded accesses has infinite backward
// distance and is preferred for eviction over any frame with k accesses,
// ties broken earliest-access-first (FIFO among the under-k frames).
type LRUKReplacer struct {
	mu           sync.Mutex
	k            int
	replacerSize int
	clock        int64
	frames       map[lib.FrameID]*frameState
	evictCount   int
}

func NewLRUKReplacer(replacerSize, k int) *LRUKReplacer {
	return &LRUKReplacer{
		k:            k,
		replacerSize: replacerSize,
		frames:       make(map[lib.FrameID]*frameState),
	}
}

// RecordAccess logs an access to frameID at the replacer's current logical
// timestamp, creating the frame's history if this is its first access.
// Panics if frameID is outside [0, replacerSize).
func (r *LRUKReplacer) RecordAccess(frameID lib.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(frameID) < 0 || int(frameID) >= r.replacerSize {
		panic(fmt.Sprintf("buffer: frame id %d out of range [0, %d)", frameID, r.replacerSize))
	}

	ts := r.clock
	r.clock++

	f, ok := r.frames[frameID]
	if !ok {
		f = &frameState{}
		r.frames[frameID] = f
	}
	f.history = append(f.history, ts)
	if len(f.history) > r.k {
		f.history = f.history[1:]
	}
}

// SetEvictable toggles whether frameID may be chosen as an eviction victim.
// It panics if frameID has no recorded access history: the buffer pool
// manager must call RecordAccess before ever touching a frame's
// evictability.
func (r *LRUKReplacer) SetEvictable(frameID lib.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.frames[frameID]
	if !ok {
		panic(fmt.Sprintf("buffer: set evictable called on untracked frame %d", frameID))
	}
	if f.evictable == evictable {
		return
	}
	f.evictable = evictable
	if evictable {
		r.evictCount++
	} else {
		r.evictCount--
	}
}

// Evict removes and returns the replacer's chosen victim frame. It reports
// false if no frame is currently evictable.
func (r *LRUKReplacer) Evict() (lib.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victim lib.FrameID
	var victimFront int64
	var victimIsNew bool
	found := false

	for id, f := range r.frames {
		if !f.evictable {
			continue
		}
		isNew := len(f.history) < r.k
		front := f.history[0]

		switch {
		case !found:
			victim, victimFront, victimIsNew, found = id, front, isNew, true
		case isNew && !victimIsNew:
			victim, victimFront, victimIsNew = id, front, isNew
		case isNew == victimIsNew && front < victimFront:
			victim, victimFront = id, front
		}
	}

	if !found {
		return 0, false
	}

	delete(r.frames, victim)
	r.evictCount--
	return victim, true
}

// Remove drops all access history for frameID. It panics if frameID has no
// recorded access history or is currently pinned non-evictable: the buffer
// pool manager must unpin a frame before asking the replacer to forget it.
func (r *LRUKReplacer) Remove(frameID lib.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.frames[frameID]
	if !ok {
		panic(fmt.Sprintf("buffer: remove called on untracked frame %d", frameID))
	}
	if !f.evictable {
		panic(fmt.Sprintf("buffer: remove called on non-evictable frame %d", frameID))
	}
	delete(r.frames, frameID)
	r.evictCount--
}

// Size returns the number of frames currently eligible for eviction.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictCount
}
