package disk

import (
	"bytes"
	"encoding/binary"
	"errors"

	"pagecache/lib"
)

// Page is a fixed-size byte buffer plus the pin/dirty bookkeeping the
// buffer pool manager and replacer need once the page is resident in a
// frame. Its id is InvalidPageID until the buffer pool manager assigns one.
type Page struct {
	id       lib.PageID
	pinCount int32
	dirty    bool
	bb       *bytes.Buffer
}

// NewPage allocates a zeroed page of the given size, not yet assigned an id.
func NewPage(pageSize int) *Page {
	return &Page{id: lib.InvalidPageID, bb: bytes.NewBuffer(make([]byte, pageSize))}
}

// NewPageFromByteSlice wraps an existing byte slice as a page buffer without
// copying; used by the log manager, whose block buffer is already sized.
func NewPageFromByteSlice(b []byte) *Page {
	return &Page{id: lib.InvalidPageID, bb: bytes.NewBuffer(b)}
}

func (p *Page) PageID() lib.PageID      { return p.id }
func (p *Page) SetPageID(id lib.PageID) { p.id = id }

func (p *Page) PinCount() int32 { return p.pinCount }

// Pin increments the page's pin count. The buffer pool manager calls this
// whenever it hands the page out to a caller; the replacer must not evict
// a page with a positive pin count.
func (p *Page) Pin() { p.pinCount++ }

// Unpin decrements the page's pin count, ORing dirty into the page's dirty
// flag. It never takes the count below zero.
func (p *Page) Unpin(dirty bool) {
	if p.pinCount > 0 {
		p.pinCount--
	}
	p.SetDirty(dirty)
}

func (p *Page) IsDirty() bool       { return p.dirty }
func (p *Page) SetDirty(dirty bool) { p.dirty = p.dirty || dirty }

// ClearDirty resets the dirty flag, called by the buffer pool manager once
// a page's contents have been flushed to disk.
func (p *Page) ClearDirty() { p.dirty = false }

// ResetMemory zeroes the page's contents and clears its identity and pin
// state, readying the frame to be reused by a different page id.
func (p *Page) ResetMemory() {
	p.bb = bytes.NewBuffer(make([]byte, p.bb.Len()))
	p.id = lib.InvalidPageID
	p.pinCount = 0
	p.dirty = false
}

func (p *Page) GetInt(offset int32) int32 {
	return int32(binary.LittleEndian.Uint32(p.bb.Bytes()[offset:]))
}

func (p *Page) PutInt(offset int32, val int32) {
	binary.LittleEndian.PutUint32(p.bb.Bytes()[offset:], uint32(val))
}

func (p *Page) PutUint16(offset int32, val uint16) {
	binary.LittleEndian.PutUint16(p.bb.Bytes()[offset:], val)
}

func (p *Page) GetUint16(offset int32) uint16 {
	return binary.LittleEndian.Uint16(p.bb.Bytes()[offset:])
}

func (p *Page) PutUint64(offset int32, val uint64) {
	binary.LittleEndian.PutUint64(p.bb.Bytes()[offset:], val)
}

func (p *Page) GetUint64(offset int32) uint64 {
	return binary.LittleEndian.Uint64(p.bb.Bytes()[offset:])
}

// GetBytes reads a length-prefixed byte slice previously written by PutBytes.
func (p *Page) GetBytes(offset int32) []byte {
	length := p.GetInt(offset)
	b := make([]byte, length)
	copy(b, p.bb.Bytes()[offset+4:offset+4+length])
	return b
}

// PutBytes writes b at offset, length-prefixed so GetBytes can read it back.
func (p *Page) PutBytes(offset int32, b []byte) (int, error) {
	if offset+4+int32(len(b)) > int32(len(p.bb.Bytes())) {
		return 0, errors.New("put bytes out of bound")
	}
	p.PutInt(offset, int32(len(b)))
	copy(p.bb.Bytes()[offset+4:], b)
	return len(b) + 4, nil
}

func (p *Page) GetString(offset int32) string {
	return string(p.GetBytes(offset))
}

func (p *Page) PutString(offset int32, s string) {
	p.PutBytes(offset, []byte(s))
}

func (p *Page) PutBool(offset int32, val bool) {
	var b byte
	if val {
		b = 1
	}
	p.bb.Bytes()[offset] = b
}

func (p *Page) GetBool(offset int32) bool {
	return p.bb.Bytes()[offset] == byte(1)
}

// Data returns the page's raw contents.
func (p *Page) Data() []byte {
	return p.bb.Bytes()
}
