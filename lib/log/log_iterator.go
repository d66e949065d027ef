package log

import (
	"iter"

	"pagecache/lib"
	"pagecache/lib/disk"
)

// LogIterator walks log records newest-first: within a page left to right,
// across pages from the current one down to page 0.
type LogIterator struct {
	diskManager DiskManager
	pageID      lib.PageID
	page        *disk.Page
	currentPos  int
	pageSize    int
	err         error
}

func NewLogIterator(diskManager DiskManager, pageID lib.PageID) (*LogIterator, error) {
	page := disk.NewPageFromByteSlice(make([]byte, diskManager.PageSize()))

	lit := &LogIterator{
		diskManager: diskManager,
		pageID:      pageID,
		page:        page,
	}
	if err := lit.moveToPage(pageID); err != nil {
		return nil, err
	}
	return lit, nil
}

func (lit *LogIterator) moveToPage(pageID lib.PageID) error {
	if err := lit.diskManager.ReadPage(pageID, lit.page); err != nil {
		return err
	}
	lit.pageSize = int(lit.page.GetInt(0))
	lit.currentPos = lit.pageSize
	return nil
}

// IterateLog yields each log record from the most recently appended back
// to the first, crossing page boundaries as it goes.
func (lit *LogIterator) IterateLog() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for lit.pageID >= 0 {
			if lit.currentPos >= lit.diskManager.PageSize() {
				prev := lit.pageID - 1
				if prev < 0 {
					break
				}
				lit.pageID = prev
				if err := lit.moveToPage(prev); err != nil {
					lit.err = err
					break
				}
			}

			record := lit.page.GetBytes(int32(lit.currentPos))
			lit.currentPos += 4 + len(record)

			if !yield(record) {
				return
			}
		}
	}
}

func (lit *LogIterator) GetError() error {
	return lit.err
}
