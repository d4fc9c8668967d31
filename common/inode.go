package common

import (
	"encoding/binary"
	"fmt"
)

// InodeType tags a DiskInode as a regular file or a directory.
type InodeType uint32

const (
	FileInode InodeType = iota
	DirInode
)

// DiskInode is the on-disk record describing one file or directory:
// its byte size and the block pointers that back it. The first
// NumDirect data blocks are addressed directly; the next IndirectCount
// through the indirect1 block (a block full of block numbers); the
// remainder through indirect2, a block of pointers to indirect1-style
// blocks. The record itself never allocates: growth consumes block
// numbers handed in by the caller, shrink hands the numbers back.
//
// Field order matches the on-disk layout and must not change.
type DiskInode struct {
	Size      uint32
	Direct    [NumDirect]uint32
	Indirect1 uint32
	Indirect2 uint32
	Type      InodeType
}

// IndirectBlock is a whole block viewed as an array of block numbers.
type IndirectBlock [IndirectCount]uint32

func (ib *IndirectBlock) RecordLen() int { return BlockSize }

func (ib *IndirectBlock) Decode(buf []byte) {
	for i := range ib {
		ib[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
}

func (ib *IndirectBlock) Encode(buf []byte) {
	for i, bnum := range ib {
		binary.LittleEndian.PutUint32(buf[i*4:], bnum)
	}
}

func (di *DiskInode) RecordLen() int { return InodeSize }

func (di *DiskInode) Decode(buf []byte) {
	di.Size = binary.LittleEndian.Uint32(buf[0:])
	for i := range di.Direct {
		di.Direct[i] = binary.LittleEndian.Uint32(buf[4+i*4:])
	}
	di.Indirect1 = binary.LittleEndian.Uint32(buf[116:])
	di.Indirect2 = binary.LittleEndian.Uint32(buf[120:])
	di.Type = InodeType(binary.LittleEndian.Uint32(buf[124:]))
}

func (di *DiskInode) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], di.Size)
	for i, bnum := range di.Direct {
		binary.LittleEndian.PutUint32(buf[4+i*4:], bnum)
	}
	binary.LittleEndian.PutUint32(buf[116:], di.Indirect1)
	binary.LittleEndian.PutUint32(buf[120:], di.Indirect2)
	binary.LittleEndian.PutUint32(buf[124:], uint32(di.Type))
}

// Init zeroes the record and tags its type; used right after the inode
// slot is allocated.
func (di *DiskInode) Init(t InodeType) {
	*di = DiskInode{Type: t}
}

func (di *DiskInode) IsDir() bool  { return di.Type == DirInode }
func (di *DiskInode) IsFile() bool { return di.Type == FileInode }

func dataBlocks(size uint32) int {
	return (int(size) + BlockSize - 1) / BlockSize
}

// DataBlocks is the number of data blocks backing the current size.
func (di *DiskInode) DataBlocks() int {
	return dataBlocks(di.Size)
}

// TotalBlocks is the number of blocks a file of the given size
// consumes: data blocks plus the indirection bookkeeping blocks needed
// to address them.
func TotalBlocks(size uint32) int {
	data := dataBlocks(size)
	total := data
	if data > NumDirect {
		total++ // the indirect1 block
	}
	if data > Indirect1Bound {
		total++ // the indirect2 block
		// plus one indirect1-style block per IndirectCount remaining blocks
		total += (data - Indirect1Bound + IndirectCount - 1) / IndirectCount
	}
	return total
}

// BlocksNumNeeded is how many extra blocks (data plus bookkeeping) a
// grow to newSize consumes. Computed purely from byte counts; it must
// match exactly what IncreaseSize wires in.
func (di *DiskInode) BlocksNumNeeded(newSize uint32) int {
	if newSize < di.Size {
		panic(fmt.Sprintf("inode shrink from %d to %d not supported", di.Size, newSize))
	}
	return TotalBlocks(newSize) - TotalBlocks(di.Size)
}

// GetBlockID resolves a file-relative block number to the device block
// backing it, walking the direct/indirect1/indirect2 tiers.
func (di *DiskInode) GetBlockID(inner int, cache BlockCache) int {
	var bnum uint32
	switch {
	case inner < NumDirect:
		bnum = di.Direct[inner]
	case inner < Indirect1Bound:
		ind1 := new(IndirectBlock)
		cb := cache.GetBlock(int(di.Indirect1))
		cb.ReadRecord(0, ind1)
		cache.PutBlock(cb)
		bnum = ind1[inner-NumDirect]
	case inner < Indirect2Bound:
		last := inner - Indirect1Bound
		ind2 := new(IndirectBlock)
		cb := cache.GetBlock(int(di.Indirect2))
		cb.ReadRecord(0, ind2)
		cache.PutBlock(cb)
		ind1 := new(IndirectBlock)
		cb = cache.GetBlock(int(ind2[last/IndirectCount]))
		cb.ReadRecord(0, ind1)
		cache.PutBlock(cb)
		bnum = ind1[last%IndirectCount]
	default:
		panic(fmt.Sprintf("file block %d beyond the doubly-indirect range", inner))
	}
	if bnum == 0 {
		panic(fmt.Sprintf("null block pointer for file block %d", inner))
	}
	return int(bnum)
}

// ReadAt copies bytes from the file content starting at offset into
// buf, one block at a time, clipping each chunk to the block boundary.
// It never reads past the current size; the number of bytes copied is
// returned.
func (di *DiskInode) ReadAt(offset int, buf []byte, cache BlockCache) int {
	start := offset
	end := offset + len(buf)
	if end > int(di.Size) {
		end = int(di.Size)
	}
	if start >= end {
		return 0
	}
	startBlock := start / BlockSize
	read := 0
	for {
		// clip to the end of the current block
		endCurrent := (startBlock + 1) * BlockSize
		if endCurrent > end {
			endCurrent = end
		}
		n := endCurrent - start
		cb := cache.GetBlock(di.GetBlockID(startBlock, cache))
		cb.ReadAt(buf[read:read+n], start%BlockSize)
		cache.PutBlock(cb)
		read += n
		if endCurrent == end {
			break
		}
		startBlock++
		start = endCurrent
	}
	return read
}

// WriteAt copies bytes from buf into the file content starting at
// offset. The file must already be large enough: growing is the
// caller's job via IncreaseSize beforehand.
func (di *DiskInode) WriteAt(offset int, buf []byte, cache BlockCache) int {
	start := offset
	end := offset + len(buf)
	if end > int(di.Size) {
		panic(fmt.Sprintf("write [%d, %d) past inode size %d", offset, end, di.Size))
	}
	if start >= end {
		return 0
	}
	startBlock := start / BlockSize
	written := 0
	for {
		endCurrent := (startBlock + 1) * BlockSize
		if endCurrent > end {
			endCurrent = end
		}
		n := endCurrent - start
		cb := cache.GetBlock(di.GetBlockID(startBlock, cache))
		cb.WriteAt(buf[written:written+n], start%BlockSize)
		cache.PutBlock(cb)
		written += n
		if endCurrent == end {
			break
		}
		startBlock++
		start = endCurrent
	}
	return written
}

// IncreaseSize grows the file to newSize, wiring the supplied freshly
// allocated block numbers into the direct/indirect1/indirect2
// structure in order. Indirection blocks are taken from the same list
// as needed; the list length must equal BlocksNumNeeded(newSize).
// A newSize at or below the current size is a no-op.
func (di *DiskInode) IncreaseSize(newSize uint32, newBlocks []uint32, cache BlockCache) {
	if newSize < di.Size {
		return
	}
	next := 0
	take := func() uint32 {
		if next >= len(newBlocks) {
			panic("inode grow consumed more blocks than were supplied")
		}
		b := newBlocks[next]
		next++
		return b
	}

	current := dataBlocks(di.Size)
	di.Size = newSize
	total := dataBlocks(di.Size)

	// direct tier
	for current < total && current < NumDirect {
		di.Direct[current] = take()
		current++
	}
	if total > NumDirect {
		if current == NumDirect {
			di.Indirect1 = take()
		}
		current -= NumDirect
		total -= NumDirect
	} else {
		return
	}

	// indirect1 tier
	ind1 := new(IndirectBlock)
	cb := cache.GetBlock(int(di.Indirect1))
	cb.ModifyRecord(0, ind1, func() {
		for current < total && current < IndirectCount {
			ind1[current] = take()
			current++
		}
	})
	cache.PutBlock(cb)
	if total > IndirectCount {
		if current == IndirectCount {
			di.Indirect2 = take()
		}
		current -= IndirectCount
		total -= IndirectCount
	} else {
		return
	}

	// indirect2 tier: (a0, b0) is the current position, (a1, b1) the target
	a0, b0 := current/IndirectCount, current%IndirectCount
	a1, b1 := total/IndirectCount, total%IndirectCount
	ind2 := new(IndirectBlock)
	cb = cache.GetBlock(int(di.Indirect2))
	cb.ModifyRecord(0, ind2, func() {
		for a0 < a1 || (a0 == a1 && b0 < b1) {
			if b0 == 0 {
				ind2[a0] = take()
			}
			sub := new(IndirectBlock)
			scb := cache.GetBlock(int(ind2[a0]))
			scb.ModifyRecord(0, sub, func() {
				sub[b0] = take()
			})
			cache.PutBlock(scb)
			b0++
			if b0 == IndirectCount {
				b0 = 0
				a0++
			}
		}
	})
	cache.PutBlock(cb)
}

// ClearSize shrinks the file to zero, zeroing the pointer fields and
// returning every data and indirection block number that was in use.
// The caller owns returning them to the allocator; this layer never
// touches it.
func (di *DiskInode) ClearSize(cache BlockCache) []uint32 {
	var collected []uint32
	data := di.DataBlocks()
	di.Size = 0

	current := 0
	for current < data && current < NumDirect {
		collected = append(collected, di.Direct[current])
		di.Direct[current] = 0
		current++
	}
	if data > NumDirect {
		collected = append(collected, di.Indirect1)
		data -= NumDirect
		current = 0
	} else {
		return collected
	}

	ind1 := new(IndirectBlock)
	cb := cache.GetBlock(int(di.Indirect1))
	cb.ReadRecord(0, ind1)
	cache.PutBlock(cb)
	for current < data && current < IndirectCount {
		collected = append(collected, ind1[current])
		current++
	}
	di.Indirect1 = 0
	if data > IndirectCount {
		collected = append(collected, di.Indirect2)
		data -= IndirectCount
	} else {
		return collected
	}

	a1, b1 := data/IndirectCount, data%IndirectCount
	ind2 := new(IndirectBlock)
	cb = cache.GetBlock(int(di.Indirect2))
	cb.ReadRecord(0, ind2)
	cache.PutBlock(cb)
	drain := func(bnum uint32, limit int) {
		collected = append(collected, bnum)
		sub := new(IndirectBlock)
		scb := cache.GetBlock(int(bnum))
		scb.ReadRecord(0, sub)
		cache.PutBlock(scb)
		collected = append(collected, sub[:limit]...)
	}
	for a := 0; a < a1; a++ {
		drain(ind2[a], IndirectCount)
	}
	if b1 > 0 {
		drain(ind2[a1], b1)
	}
	di.Indirect2 = 0
	return collected
}
