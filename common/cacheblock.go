package common

import (
	"fmt"
	"sync"
)

// CacheBlock is one cached device block. The buffer is guarded by a
// per-block mutex which is held only while decoding or encoding, never
// across nested cache operations, so record accessors are free to
// fetch other blocks while they run.
type CacheBlock struct {
	Blocknum int  // the number of this block, NoBlock when the slot is empty
	Dirty    bool // whether the buffer has changes not yet on the device

	Buf interface{} // the cache-policy specific wrapper for this block

	data []byte
	m    sync.Mutex
}

func NewCacheBlock() *CacheBlock {
	return &CacheBlock{
		Blocknum: NoBlock,
		data:     make([]byte, BlockSize),
	}
}

// ReadRecord decodes the record stored at the given offset. The record
// must lie entirely within the block.
func (cb *CacheBlock) ReadRecord(offset int, rec Record) {
	cb.m.Lock()
	defer cb.m.Unlock()
	cb.checkBounds(offset, rec.RecordLen())
	rec.Decode(cb.data[offset : offset+rec.RecordLen()])
}

// ModifyRecord decodes the record at the given offset, runs f to
// mutate it, then encodes it back and marks the block dirty. The
// per-block lock is released while f runs, so f may reach other blocks
// through the cache; it must not touch this record's bytes by any
// other route.
func (cb *CacheBlock) ModifyRecord(offset int, rec Record, f func()) {
	cb.ReadRecord(offset, rec)
	f()
	cb.m.Lock()
	defer cb.m.Unlock()
	cb.checkBounds(offset, rec.RecordLen())
	rec.Encode(cb.data[offset : offset+rec.RecordLen()])
	cb.Dirty = true
}

// ReadAt copies raw bytes out of the block buffer.
func (cb *CacheBlock) ReadAt(dst []byte, offset int) {
	cb.m.Lock()
	defer cb.m.Unlock()
	cb.checkBounds(offset, len(dst))
	copy(dst, cb.data[offset:offset+len(dst)])
}

// WriteAt copies raw bytes into the block buffer and marks it dirty.
func (cb *CacheBlock) WriteAt(src []byte, offset int) {
	cb.m.Lock()
	defer cb.m.Unlock()
	cb.checkBounds(offset, len(src))
	copy(cb.data[offset:offset+len(src)], src)
	cb.Dirty = true
}

// Zero clears the buffer and marks the block dirty.
func (cb *CacheBlock) Zero() {
	cb.m.Lock()
	defer cb.m.Unlock()
	for i := range cb.data {
		cb.data[i] = 0
	}
	cb.Dirty = true
}

// Reset repoints the slot at a new block number with an undefined
// buffer; the caller fills it via Fill or Zero.
func (cb *CacheBlock) Reset(bnum int) {
	cb.m.Lock()
	defer cb.m.Unlock()
	cb.Blocknum = bnum
	cb.Dirty = false
}

// Fill loads the buffer from the device.
func (cb *CacheBlock) Fill(dev BlockDevice) error {
	cb.m.Lock()
	defer cb.m.Unlock()
	return dev.Read(cb.data, int64(cb.Blocknum)*BlockSize)
}

// WriteTo pushes the buffer to the device if it is dirty and clears
// the dirty flag.
func (cb *CacheBlock) WriteTo(dev BlockDevice) error {
	cb.m.Lock()
	defer cb.m.Unlock()
	if !cb.Dirty {
		return nil
	}
	if err := dev.Write(cb.data, int64(cb.Blocknum)*BlockSize); err != nil {
		return err
	}
	cb.Dirty = false
	return nil
}

func (cb *CacheBlock) checkBounds(offset, n int) {
	if offset < 0 || n < 0 || offset+n > BlockSize {
		panic(fmt.Sprintf("block %d: access [%d, %d) crosses the block boundary", cb.Blocknum, offset, offset+n))
	}
}
