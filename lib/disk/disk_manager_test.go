package disk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pagecache/lib"
)

func TestReadWriteFile(t *testing.T) {
	path := t.TempDir() + "/pagecache.db"
	dm, err := NewDiskManager(path, 4096)
	if err != nil {
		t.Fatal(err)
	}
	defer dm.Close()

	id, err := dm.AllocatePage()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, lib.PageID(0), id)

	page := NewPage(4096)
	page.PutInt(0, 1)
	page.PutInt(4, 2)
	page.PutInt(8, 3)
	page.PutString(12, "lintang")
	if err := dm.WritePage(id, page); err != nil {
		t.Fatal(err)
	}

	reader := NewPage(4096)
	if err := dm.ReadPage(id, reader); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, int32(1), reader.GetInt(0))
	assert.Equal(t, int32(2), reader.GetInt(4))
	assert.Equal(t, int32(3), reader.GetInt(8))
	assert.Equal(t, "lintang", reader.GetString(12))
}

func TestReadOutOfRange(t *testing.T) {
	path := t.TempDir() + "/pagecache.db"
	dm, err := NewDiskManager(path, 4096)
	if err != nil {
		t.Fatal(err)
	}
	defer dm.Close()

	page := NewPage(4096)
	err = dm.ReadPage(lib.PageID(5), page)
	assert.Error(t, err)
}

func TestAllocator(t *testing.T) {
	path := t.TempDir() + "/pagecache.db"
	dm, err := NewDiskManager(path, 4096)
	if err != nil {
		t.Fatal(err)
	}
	defer dm.Close()

	alloc := NewAllocator(dm)
	id0, err := alloc.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	id1, err := alloc.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEqual(t, id0, id1)

	alloc.Release(id0)
	reused, err := alloc.Allocate()
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, id0, reused)
}
