package bcache

import (
	"github.com/teachos/easyfs/common"
)

type req_BlockCache_GetBlock struct {
	bnum int
}
type res_BlockCache_GetBlock struct {
	Arg0 *common.CacheBlock
}
type req_BlockCache_PutBlock struct {
	cb *common.CacheBlock
}
type res_BlockCache_PutBlock struct{}
type req_BlockCache_Flush struct{}
type res_BlockCache_Flush struct{}
type req_BlockCache_Shutdown struct{}
type res_BlockCache_Shutdown struct {
	Arg0 error
}

// Interface types and implementations
type reqBlockCache interface {
	is_reqBlockCache()
}
type resBlockCache interface {
	is_resBlockCache()
}

func (r req_BlockCache_GetBlock) is_reqBlockCache() {}
func (r res_BlockCache_GetBlock) is_resBlockCache() {}
func (r req_BlockCache_PutBlock) is_reqBlockCache() {}
func (r res_BlockCache_PutBlock) is_resBlockCache() {}
func (r req_BlockCache_Flush) is_reqBlockCache()    {}
func (r res_BlockCache_Flush) is_resBlockCache()    {}
func (r req_BlockCache_Shutdown) is_reqBlockCache() {}
func (r res_BlockCache_Shutdown) is_resBlockCache() {}

// Type check request/response types
var _ reqBlockCache = req_BlockCache_GetBlock{}
var _ resBlockCache = res_BlockCache_GetBlock{}
var _ reqBlockCache = req_BlockCache_PutBlock{}
var _ resBlockCache = res_BlockCache_PutBlock{}
var _ reqBlockCache = req_BlockCache_Flush{}
var _ resBlockCache = res_BlockCache_Flush{}
var _ reqBlockCache = req_BlockCache_Shutdown{}
var _ resBlockCache = res_BlockCache_Shutdown{}

func (c *LRUCache) GetBlock(bnum int) *common.CacheBlock {
	c.in <- req_BlockCache_GetBlock{bnum}
	result := (<-c.out).(res_BlockCache_GetBlock)
	if result.Arg0 == LRU_ALLINUSE {
		panic("all buffers in use")
	}
	return result.Arg0
}
func (c *LRUCache) PutBlock(cb *common.CacheBlock) {
	c.in <- req_BlockCache_PutBlock{cb}
	<-c.out
}
func (c *LRUCache) Flush() {
	c.in <- req_BlockCache_Flush{}
	<-c.out
}
func (c *LRUCache) Shutdown() error {
	c.in <- req_BlockCache_Shutdown{}
	result := (<-c.out).(res_BlockCache_Shutdown)
	return result.Arg0
}
