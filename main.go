package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"pagecache/lib"
	"pagecache/lib/buffer"
	"pagecache/lib/disk"
)

func main() {
	dbDir := lib.DB_DIR
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("create db dir: %v", err)
	}

	cfg := lib.DefaultConfig()
	dm, err := disk.NewDiskManager(dbDir+"/"+lib.PAGE_FILE_NAME, cfg.PageSize)
	if err != nil {
		log.Fatalf("open disk manager: %v", err)
	}
	defer dm.Close()

	alloc := disk.NewAllocator(dm)
	bpm := buffer.NewBufferPoolManager(cfg, dm, alloc, nil)

	faker := gofakeit.New(0)
	start := time.Now()

	ids := make([]lib.PageID, 0, 100)
	for i := 0; i < 100; i++ {
		id, page, ok := bpm.NewPage()
		if !ok {
			fmt.Println("pool exhausted, unpinning oldest pages")
			for _, old := range ids[:10] {
				bpm.UnpinPage(old, false)
			}
			ids = ids[10:]
			id, page, ok = bpm.NewPage()
			if !ok {
				log.Fatal("still no free frame after unpinning")
			}
		}
		page.PutString(0, faker.Word())
		bpm.UnpinPage(id, true)
		ids = append(ids, id)
	}

	if err := bpm.FlushAllPages(); err != nil {
		log.Fatalf("flush all pages: %v", err)
	}

	fmt.Printf("wrote %d pages in %v\n", len(ids), time.Since(start))
}
