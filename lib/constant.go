package lib

// Defaults for the four knobs a caller tunes when wiring up the page
// cache: page size, frame count, LRU-K history depth, and hash bucket
// capacity.
const (
	DefaultPageSize   = 4096
	DefaultPoolSize   = 64
	DefaultReplacerK  = 2
	DefaultBucketSize = 4

	DB_DIR         = "pagecache_db"
	PAGE_FILE_NAME = "pagecache.db"
	LOG_FILE_NAME  = "pagecache.log"
)
