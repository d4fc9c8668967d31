// Package bcache implements the block cache: a fixed set of in-memory
// block buffers with dirty tracking, an LRU reuse policy and an
// explicit flush-all. All cache state is owned by a single server
// goroutine; clients talk to it through the methods in boilerplate.go.
package bcache

import (
	"fmt"

	"github.com/teachos/easyfs/common"
)

// An elaboration of the CacheBlock type, decorated with the members we
// need to handle the LRU policy.
type lru_buf struct {
	*common.CacheBlock

	count int // the number of clients of this block

	next *lru_buf // towards the rear (most recently used)
	prev *lru_buf // towards the front (next eviction candidate)
}

// Returned from the server loop when every slot is pinned; the client
// stub turns it into a panic so the server itself stays alive.
var LRU_ALLINUSE *common.CacheBlock = new(common.CacheBlock)

type LRUCache struct {
	dev common.BlockDevice

	buf   []*lru_buf // static list of cache slots
	front *lru_buf   // least recently used block
	rear  *lru_buf   // most recently used block

	in  chan reqBlockCache
	out chan resBlockCache
}

// NewLRUCache creates a cache with the given number of slots over one
// block device and starts its server loop.
func NewLRUCache(dev common.BlockDevice, numslots int) common.BlockCache {
	cache := &LRUCache{
		dev: dev,
		buf: make([]*lru_buf, numslots),
		in:  make(chan reqBlockCache),
		out: make(chan resBlockCache),
	}

	for i := 0; i < numslots; i++ {
		cache.buf[i] = new(lru_buf)
		cache.buf[i].CacheBlock = common.NewCacheBlock()
		cache.buf[i].CacheBlock.Buf = cache.buf[i]
	}

	for i := 1; i < numslots; i++ {
		cache.buf[i].prev = cache.buf[i-1]
		cache.buf[i-1].next = cache.buf[i]
	}
	cache.front = cache.buf[0]
	cache.rear = cache.buf[numslots-1]

	go cache.loop()
	return cache
}

func (c *LRUCache) loop() {
	alive := true
	for alive {
		req := <-c.in
		switch req := req.(type) {
		case req_BlockCache_GetBlock:
			c.out <- res_BlockCache_GetBlock{c.getBlock(req.bnum)}
		case req_BlockCache_PutBlock:
			c.putBlock(req.cb)
			c.out <- res_BlockCache_PutBlock{}
		case req_BlockCache_Flush:
			c.flush()
			c.out <- res_BlockCache_Flush{}
		case req_BlockCache_Shutdown:
			pinned := false
			for _, bp := range c.buf {
				if bp.count > 0 {
					pinned = true
				}
			}
			if pinned {
				c.out <- res_BlockCache_Shutdown{common.EBUSY}
				continue
			}
			c.flush()
			alive = false
			c.out <- res_BlockCache_Shutdown{nil}
		}
	}
}

// getBlock finds or loads the block, pinning it. The slot count is
// tiny, so the search is a plain scan.
func (c *LRUCache) getBlock(bnum int) *common.CacheBlock {
	for _, bp := range c.buf {
		if bp.Blocknum == bnum {
			if bp.count == 0 {
				c.rm_lru(bp)
			}
			bp.count++
			return bp.CacheBlock
		}
	}

	// Not cached; reuse the least recently used free slot.
	bp := c.evictBlock()
	if bp == nil {
		return LRU_ALLINUSE
	}
	bp.Reset(bnum)
	if err := bp.Fill(c.dev); err != nil {
		// Device I/O failure is not modeled as recoverable.
		panic(fmt.Sprintf("read of block %d failed: %s", bnum, err))
	}
	bp.count = 1
	return bp.CacheBlock
}

// evictBlock takes the front of the LRU chain, writing it out first if
// it is dirty. Pinned blocks are not on the chain, so a nil result
// means every slot is in use.
func (c *LRUCache) evictBlock() *lru_buf {
	bp := c.front
	if bp == nil {
		return nil
	}
	c.rm_lru(bp)

	if bp.Blocknum != common.NoBlock && bp.Dirty {
		if err := bp.WriteTo(c.dev); err != nil {
			panic(fmt.Sprintf("evicting block %d failed: %s", bp.Blocknum, err))
		}
	}
	return bp
}

// putBlock releases one pin; an unpinned block goes to the rear of the
// LRU chain so it survives in the cache as long as possible.
func (c *LRUCache) putBlock(cb *common.CacheBlock) {
	if cb == nil {
		return
	}
	bp := cb.Buf.(*lru_buf)

	bp.count--
	if bp.count > 0 {
		return
	}
	if bp.count < 0 {
		panic(fmt.Sprintf("block %d released more times than acquired", bp.Blocknum))
	}

	bp.prev = c.rear
	bp.next = nil
	if c.rear == nil {
		c.front = bp
	} else {
		c.rear.next = bp
	}
	c.rear = bp
}

// flush writes every dirty block to the device and clears the dirty
// flags, pinned blocks included.
func (c *LRUCache) flush() {
	for _, bp := range c.buf {
		if bp.Blocknum == common.NoBlock || !bp.Dirty {
			continue
		}
		if err := bp.WriteTo(c.dev); err != nil {
			panic(fmt.Sprintf("flush of block %d failed: %s", bp.Blocknum, err))
		}
	}
}

// Remove a block from the LRU chain.
func (c *LRUCache) rm_lru(bp *lru_buf) {
	nextp := bp.next
	prevp := bp.prev
	if prevp != nil {
		prevp.next = nextp
	} else {
		c.front = nextp
	}

	if nextp != nil {
		nextp.prev = prevp
	} else {
		c.rear = prevp
	}
	bp.next = nil
	bp.prev = nil
}
