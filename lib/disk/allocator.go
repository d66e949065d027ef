package disk

import (
	"sync"

	"pagecache/lib"
)

// Allocator hands out page ids. Freed ids are pushed onto a reuse stack and
// handed back out before the backing file is grown further, so a
// create/delete/create cycle doesn't leave holes in the file.
type Allocator struct {
	mu    sync.Mutex
	dm    *DiskManager
	freed []lib.PageID
}

func NewAllocator(dm *DiskManager) *Allocator {
	return &Allocator{dm: dm}
}

// Allocate returns a freed id if one is available, otherwise grows the
// backing file for a brand new one.
func (a *Allocator) Allocate() (lib.PageID, error) {
	a.mu.Lock()
	if n := len(a.freed); n > 0 {
		id := a.freed[n-1]
		a.freed = a.freed[:n-1]
		a.mu.Unlock()
		return id, nil
	}
	a.mu.Unlock()
	return a.dm.AllocatePage()
}

// Release marks id free for reuse by a future Allocate call.
func (a *Allocator) Release(id lib.PageID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freed = append(a.freed, id)
}
