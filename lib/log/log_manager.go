package log

import (
	"pagecache/lib"
	"pagecache/lib/disk"
)

// DiskManager is the slice of disk.DiskManager the log manager needs: a
// single growable file addressed by page id.
type DiskManager interface {
	ReadPage(id lib.PageID, page *disk.Page) error
	WritePage(id lib.PageID, page *disk.Page) error
	AllocatePage() (lib.PageID, error)
	PageSize() int
}

// LogManager appends write-ahead log records to a dedicated file, one
// fixed-size page per block. Records are packed from the back of each page
// towards the front so the most recent record in a page sits at the lowest
// offset, which is what makes iterating newest-first cheap.
type LogManager struct {
	diskManager  DiskManager
	logPage      *disk.Page
	currentPage  lib.PageID
	latestLSN    int
	lastSavedLSN int
}

func NewLogManager(diskManager DiskManager) (*LogManager, error) {
	b := make([]byte, diskManager.PageSize())
	logPage := disk.NewPageFromByteSlice(b)

	lm := &LogManager{
		diskManager: diskManager,
		logPage:     logPage,
	}

	pageID, err := lm.appendNewPage()
	if err != nil {
		return nil, err
	}
	lm.currentPage = pageID
	return lm, nil
}

// Flush writes the in-memory log page to disk if lsn hasn't been saved yet.
func (lm *LogManager) Flush(lsn int) error {
	if lsn > lm.lastSavedLSN {
		return lm.flushCurrentPage()
	}
	return nil
}

func (lm *LogManager) flushCurrentPage() error {
	if err := lm.diskManager.WritePage(lm.currentPage, lm.logPage); err != nil {
		return err
	}
	lm.lastSavedLSN = lm.latestLSN
	return nil
}

// appendNewPage allocates a fresh log page, seeds it with its own capacity
// marker, and writes it out.
func (lm *LogManager) appendNewPage() (lib.PageID, error) {
	id, err := lm.diskManager.AllocatePage()
	if err != nil {
		return lib.InvalidPageID, err
	}

	lm.logPage.PutInt(0, int32(lm.diskManager.PageSize()))
	if err := lm.diskManager.WritePage(id, lm.logPage); err != nil {
		return lib.InvalidPageID, err
	}
	return id, nil
}

func (lm *LogManager) GetIterator() (*LogIterator, error) {
	if err := lm.flushCurrentPage(); err != nil {
		return nil, err
	}
	return NewLogIterator(lm.diskManager, lm.currentPage)
}

// append packs logRecord into the current log page, right to left, spilling
// into a freshly allocated page when the current one is full. It returns
// the log sequence number assigned to the record.
func (lm *LogManager) append(logRecord []byte) (int, error) {
	pageCapacity := lm.logPage.GetInt(0)
	recordSize := len(logRecord)
	bytesNeeded := int32(recordSize + 4)
	var err error
	if bytesNeeded+4 > pageCapacity {
		if err := lm.flushCurrentPage(); err != nil {
			return 0, err
		}
		lm.currentPage, err = lm.appendNewPage()
		if err != nil {
			return 0, err
		}
		pageCapacity = lm.logPage.GetInt(0)
	}

	recordPosition := pageCapacity - bytesNeeded

	lm.logPage.PutBytes(recordPosition, logRecord)
	lm.logPage.PutInt(0, recordPosition)
	lm.latestLSN++
	return lm.latestLSN, nil
}
