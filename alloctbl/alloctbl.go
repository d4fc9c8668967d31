// Package alloctbl owns the inode and data bitmaps of a mounted
// device. All bitmap state is serialized through one server goroutine;
// the client-facing methods live in boilerplate.go.
package alloctbl

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/sirupsen/logrus"
	"github.com/teachos/easyfs/common"
)

const (
	IMAP = iota // inode bitmap
	DMAP        // data bitmap
)

const wordsPerBlock = common.BlockSize / 8

// A whole bitmap block viewed as 64-bit chunks.
type bitmapBlock [wordsPerBlock]uint64

func (bm *bitmapBlock) RecordLen() int { return common.BlockSize }

func (bm *bitmapBlock) Decode(buf []byte) {
	for i := range bm {
		bm[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
}

func (bm *bitmapBlock) Encode(buf []byte) {
	for i, w := range bm {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
}

type server_AllocTbl struct {
	devinfo *common.DeviceInfo
	cache   common.BlockCache // so we can read/write the bitmap blocks

	i_search int // start searching for unallocated inodes here
	d_search int // start searching for unallocated data blocks here

	in  chan reqAllocTbl
	out chan resAllocTbl
}

func NewAllocTbl(devinfo *common.DeviceInfo, cache common.BlockCache) common.AllocTbl {
	alloc := &server_AllocTbl{
		devinfo: devinfo,
		cache:   cache,
		in:      make(chan reqAllocTbl),
		out:     make(chan resAllocTbl),
	}

	go alloc.loop()
	return alloc
}

func (alloc *server_AllocTbl) loop() {
	alive := true
	for alive {
		req := <-alloc.in
		switch req := req.(type) {
		case req_AllocTbl_AllocInode:
			b := alloc.alloc_bit(IMAP, alloc.i_search)
			if b == common.NoBit {
				logrus.Warnf("out of inode slots on device")
				alloc.out <- res_AllocTbl_AllocInode{-1, common.ENFILE}
				continue
			}
			alloc.i_search = b // next time start here
			alloc.out <- res_AllocTbl_AllocInode{b, nil}
		case req_AllocTbl_AllocData:
			b := alloc.alloc_bit(DMAP, alloc.d_search)
			if b == common.NoBit {
				logrus.Warnf("out of data blocks on device")
				alloc.out <- res_AllocTbl_AllocData{-1, common.ENOSPC}
				continue
			}
			alloc.d_search = b
			alloc.out <- res_AllocTbl_AllocData{alloc.devinfo.DataAreaStart() + b, nil}
		case req_AllocTbl_FreeInode:
			if req.inum < 0 || req.inum >= alloc.devinfo.Inodes() {
				panic(fmt.Sprintf("freeing inode %d outside the inode area", req.inum))
			}
			alloc.free_bit(IMAP, req.inum)
			if req.inum < alloc.i_search {
				alloc.i_search = req.inum
			}
			alloc.out <- res_AllocTbl_FreeInode{}
		case req_AllocTbl_FreeData:
			bit := req.bnum - alloc.devinfo.DataAreaStart()
			if bit < 0 || bit >= alloc.devinfo.DataAreaBlocks {
				panic(fmt.Sprintf("freeing block %d outside the data area", req.bnum))
			}
			// Zero the content first so a later allocation of the same
			// block never observes stale data.
			cb := alloc.cache.GetBlock(req.bnum)
			cb.Zero()
			alloc.cache.PutBlock(cb)
			alloc.free_bit(DMAP, bit)
			if bit < alloc.d_search {
				alloc.d_search = bit
			}
			alloc.out <- res_AllocTbl_FreeData{}
		case req_AllocTbl_FreeInodeCount:
			alloc.out <- res_AllocTbl_FreeInodeCount{alloc.count_free(IMAP)}
		case req_AllocTbl_FreeDataCount:
			alloc.out <- res_AllocTbl_FreeDataCount{alloc.count_free(DMAP)}
		case req_AllocTbl_Shutdown:
			// This is always successful
			alive = false
			alloc.out <- res_AllocTbl_Shutdown{nil}
		}
	}
}

// extent describes one bitmap: its first block, how many blocks it
// spans, and how many of its bits are actually valid.
func (alloc *server_AllocTbl) extent(which int) (start, blocks, maxbits int) {
	if which == IMAP {
		return alloc.devinfo.InodeBitmapStart(), alloc.devinfo.InodeBitmapBlocks, alloc.devinfo.Inodes()
	}
	return alloc.devinfo.DataBitmapStart(), alloc.devinfo.DataBitmapBlocks, alloc.devinfo.DataAreaBlocks
}

// alloc_bit finds the lowest free bit at or after origin, marks it
// used and returns its index, or NoBit when the map is full. Frees
// always pull the search origin back, so the result is the lowest free
// bit of the whole map.
func (alloc *server_AllocTbl) alloc_bit(which int, origin int) int {
	start, blocks, maxbits := alloc.extent(which)

	for b := origin / common.BitsPerBlock; b < blocks; b++ {
		cb := alloc.cache.GetBlock(start + b)
		bm := new(bitmapBlock)
		cb.ReadRecord(0, bm)

		found := common.NoBit
		for w := 0; w < wordsPerBlock; w++ {
			if bm[w] == ^uint64(0) {
				continue
			}
			off := bits.TrailingZeros64(^bm[w])
			bit := b*common.BitsPerBlock + w*64 + off
			if bit >= maxbits {
				break
			}
			cb.ModifyRecord(0, bm, func() {
				bm[w] |= uint64(1) << off
			})
			found = bit
			break
		}
		alloc.cache.PutBlock(cb)
		if found != common.NoBit {
			return found
		}
	}
	return common.NoBit
}

// free_bit clears a bit that must currently be set.
func (alloc *server_AllocTbl) free_bit(which int, bit int) {
	start, _, _ := alloc.extent(which)

	b := bit / common.BitsPerBlock
	w := (bit % common.BitsPerBlock) / 64
	off := uint(bit % 64)

	cb := alloc.cache.GetBlock(start + b)
	bm := new(bitmapBlock)
	cb.ReadRecord(0, bm)
	if bm[w]&(uint64(1)<<off) == 0 {
		panic(fmt.Sprintf("freeing bit %d of map %d which is not in use", bit, which))
	}
	cb.ModifyRecord(0, bm, func() {
		bm[w] &^= uint64(1) << off
	})
	alloc.cache.PutBlock(cb)
}

func (alloc *server_AllocTbl) count_free(which int) int {
	start, blocks, maxbits := alloc.extent(which)

	used := 0
	for b := 0; b < blocks; b++ {
		cb := alloc.cache.GetBlock(start + b)
		bm := new(bitmapBlock)
		cb.ReadRecord(0, bm)
		alloc.cache.PutBlock(cb)
		for _, w := range bm {
			used += bits.OnesCount64(w)
		}
	}
	return maxbits - used
}
