package disk

import (
	"errors"
	"os"
	"sync"

	"pagecache/lib"
)

// DiskManager owns the single backing file a page cache reads and writes
// pages against. A page's offset on disk is simply its id times the page
// size, so growing the file is just extending it far enough to cover a
// newly allocated id.
type DiskManager struct {
	pageSize int
	file     *os.File
	latch    sync.Mutex
}

// NewDiskManager opens (creating if absent) the backing file at path.
func NewDiskManager(path string, pageSize int) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return &DiskManager{pageSize: pageSize, file: f}, nil
}

// ReadPage reads the page at id into page's buffer.
func (dm *DiskManager) ReadPage(id lib.PageID, page *Page) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(id) * int64(dm.pageSize)
	fi, err := dm.file.Stat()
	if err != nil {
		return err
	}
	if offset+int64(dm.pageSize) > fi.Size() {
		return errors.New("read page out of range")
	}
	if _, err := dm.file.ReadAt(page.Data(), offset); err != nil {
		return err
	}
	return nil
}

// WritePage writes page's buffer to the slot for id, extending the file if
// id has never been written before.
func (dm *DiskManager) WritePage(id lib.PageID, page *Page) error {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	offset := int64(id) * int64(dm.pageSize)
	_, err := dm.file.WriteAt(page.Data(), offset)
	return err
}

// AllocatePage extends the backing file by one page-sized slot and returns
// the zero-based id of that slot.
func (dm *DiskManager) AllocatePage() (lib.PageID, error) {
	dm.latch.Lock()
	defer dm.latch.Unlock()

	fi, err := dm.file.Stat()
	if err != nil {
		return lib.InvalidPageID, err
	}
	id := lib.PageID(fi.Size() / int64(dm.pageSize))
	if _, err := dm.file.WriteAt(make([]byte, dm.pageSize), int64(id)*int64(dm.pageSize)); err != nil {
		return lib.InvalidPageID, err
	}
	return id, nil
}

// DeallocatePage is a no-op on the slot itself; the caller's allocator is
// responsible for marking id free for reuse. There is no on-disk free-space
// reclamation — the file is append-only and slots are only ever reused
// through the allocator's reuse stack.
func (dm *DiskManager) DeallocatePage(id lib.PageID) error {
	return nil
}

func (dm *DiskManager) PageSize() int {
	return dm.pageSize
}

// Close flushes and closes the backing file.
func (dm *DiskManager) Close() error {
	return dm.file.Close()
}
