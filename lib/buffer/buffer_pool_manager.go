package buffer

import (
	"errors"
	"fmt"
	"sync"

	"pagecache/lib"
	"pagecache/lib/disk"
	"pagecache/lib/hash"
)

// DiskManager is the slice of disk.DiskManager the pool needs to read and
// write whole pages by id.
type DiskManager interface {
	ReadPage(id lib.PageID, page *disk.Page) error
	WritePage(id lib.PageID, page *disk.Page) error
}

// Allocator synthesises fresh page ids and accepts deallocated ones back
// for reuse.
type Allocator interface {
	Allocate() (lib.PageID, error)
	Release(id lib.PageID)
}

// LogManager is accepted for construction parity with the on-disk layer's
// collaborators but is never called into by the pool itself — see the
// external-interfaces note on the log manager being an optional, opaque
// collaborator.
type LogManager interface {
	Flush(lsn int) error
}

// BufferPoolManager mediates all access between callers and the on-disk
// page file: it owns the frame array, the page-id→frame-id directory, the
// LRU-K replacer, and a free list of never-yet-used frames. A single mutex
// guards every public operation for its full extent, the reads and writes
// to disk included.
type BufferPoolManager struct {
	mu sync.Mutex

	frames    []*disk.Page
	pageTable *hash.Table[lib.PageID, lib.FrameID]
	replacer  *LRUKReplacer
	freeList  []lib.FrameID

	diskManager DiskManager
	allocator   Allocator
	logManager  LogManager

	poolSize int
	pageSize int
}

// NewBufferPoolManager constructs a pool of cfg.PoolSize empty frames, all
// initially on the free list. logManager may be nil.
func NewBufferPoolManager(cfg lib.Config, diskManager DiskManager, allocator Allocator, logManager LogManager) *BufferPoolManager {
	frames := make([]*disk.Page, cfg.PoolSize)
	freeList := make([]lib.FrameID, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		frames[i] = disk.NewPage(cfg.PageSize)
		freeList[i] = lib.FrameID(i)
	}

	return &BufferPoolManager{
		frames:      frames,
		pageTable:   hash.NewInt32Keyed[lib.PageID, lib.FrameID](cfg.BucketSize),
		replacer:    NewLRUKReplacer(cfg.PoolSize, cfg.ReplacerK),
		freeList:    freeList,
		diskManager: diskManager,
		allocator:   allocator,
		logManager:  logManager,
		poolSize:    cfg.PoolSize,
		pageSize:    cfg.PageSize,
	}
}

// getFreePage obtains a frame ready to hold a new page: from the free list
// if one is available, otherwise by evicting the replacer's chosen victim,
// flushing it first if dirty. The caller must hold mu.
func (bpm *BufferPoolManager) getFreePage() (lib.FrameID, bool) {
	var frameID lib.FrameID

	if len(bpm.freeList) > 0 {
		frameID = bpm.freeList[0]
		bpm.freeList = bpm.freeList[1:]
	} else {
		victimID, ok := bpm.replacer.Evict()
		if !ok {
			return 0, false
		}

		victim := bpm.frames[victimID]
		if victim.PageID() != lib.InvalidPageID {
			if victim.IsDirty() {
				if err := bpm.diskManager.WritePage(victim.PageID(), victim); err != nil {
					return 0, false
				}
				victim.ClearDirty()
			}
			bpm.pageTable.Remove(victim.PageID())
		}
		victim.ResetMemory()
		frameID = victimID
	}

	bpm.replacer.RecordAccess(frameID)
	return frameID, true
}

// NewPage allocates a fresh page id, claims a frame for it, and returns the
// pinned, zeroed page. It fails if no frame is available.
func (bpm *BufferPoolManager) NewPage() (lib.PageID, *disk.Page, bool) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameID, ok := bpm.getFreePage()
	if !ok {
		return lib.InvalidPageID, nil, false
	}

	id, err := bpm.allocator.Allocate()
	if err != nil {
		bpm.freeList = append(bpm.freeList, frameID)
		return lib.InvalidPageID, nil, false
	}

	page := bpm.frames[frameID]
	page.SetPageID(id)
	page.Pin()

	bpm.pageTable.Insert(id, frameID)
	bpm.replacer.SetEvictable(frameID, false)

	return id, page, true
}

// FetchPage returns the page for id, pinning it. It reads the page from
// disk on a miss, claiming a frame the same way NewPage does.
func (bpm *BufferPoolManager) FetchPage(id lib.PageID) (*disk.Page, bool) {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	if frameID, ok := bpm.pageTable.Get(id); ok {
		page := bpm.frames[frameID]
		page.Pin()
		bpm.replacer.RecordAccess(frameID)
		bpm.replacer.SetEvictable(frameID, false)
		return page, true
	}

	frameID, ok := bpm.getFreePage()
	if !ok {
		return nil, false
	}

	page := bpm.frames[frameID]
	if err := bpm.diskManager.ReadPage(id, page); err != nil {
		bpm.freeList = append(bpm.freeList, frameID)
		return nil, false
	}
	page.SetPageID(id)
	page.Pin()

	bpm.pageTable.Insert(id, frameID)
	bpm.replacer.SetEvictable(frameID, false)

	return page, true
}

// UnpinPage decrements id's pin count, ORing isDirty into its dirty flag.
// Once the pin count reaches zero the frame becomes eligible for eviction.
// It fails if id isn't resident or is already unpinned.
func (bpm *BufferPoolManager) UnpinPage(id lib.PageID, isDirty bool) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameID, ok := bpm.pageTable.Get(id)
	if !ok {
		return false
	}

	page := bpm.frames[frameID]
	if page.PinCount() <= 0 {
		return false
	}

	page.Unpin(isDirty)
	if page.PinCount() == 0 {
		bpm.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes id's frame to disk if dirty and clears its dirty flag.
// It fails if id isn't resident.
func (bpm *BufferPoolManager) FlushPage(id lib.PageID) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()
	return bpm.flushLocked(id)
}

func (bpm *BufferPoolManager) flushLocked(id lib.PageID) bool {
	frameID, ok := bpm.pageTable.Get(id)
	if !ok {
		return false
	}

	page := bpm.frames[frameID]
	if page.IsDirty() {
		if err := bpm.diskManager.WritePage(id, page); err != nil {
			return false
		}
		page.ClearDirty()
	}
	return true
}

// FlushAllPages flushes every resident, dirty frame, joining any write
// errors encountered along the way.
func (bpm *BufferPoolManager) FlushAllPages() error {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	var errs []error
	for _, page := range bpm.frames {
		if page.PageID() == lib.InvalidPageID || !page.IsDirty() {
			continue
		}
		if err := bpm.diskManager.WritePage(page.PageID(), page); err != nil {
			errs = append(errs, fmt.Errorf("flush page %d: %w", page.PageID(), err))
			continue
		}
		page.ClearDirty()
	}
	return errors.Join(errs...)
}

// DeletePage removes id from the pool. It reports true if id was already
// absent, false if it is still pinned, and otherwise resets the frame and
// releases its id back to the allocator. The freed frame is not returned
// to the free list; see the design notes on this deliberately literal
// reimplementation of the reference behavior.
func (bpm *BufferPoolManager) DeletePage(id lib.PageID) bool {
	bpm.mu.Lock()
	defer bpm.mu.Unlock()

	frameID, ok := bpm.pageTable.Get(id)
	if !ok {
		return true
	}

	page := bpm.frames[frameID]
	if page.PinCount() > 0 {
		return false
	}

	bpm.pageTable.Remove(id)
	bpm.replacer.SetEvictable(frameID, true)
	bpm.replacer.Remove(frameID)
	page.ResetMemory()

	bpm.allocator.Release(id)
	return true
}
