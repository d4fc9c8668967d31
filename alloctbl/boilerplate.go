package alloctbl

type req_AllocTbl_AllocInode struct{}
type res_AllocTbl_AllocInode struct {
	Arg0 int
	Arg1 error
}
type req_AllocTbl_AllocData struct{}
type res_AllocTbl_AllocData struct {
	Arg0 int
	Arg1 error
}
type req_AllocTbl_FreeInode struct {
	inum int
}
type res_AllocTbl_FreeInode struct{}
type req_AllocTbl_FreeData struct {
	bnum int
}
type res_AllocTbl_FreeData struct{}
type req_AllocTbl_FreeInodeCount struct{}
type res_AllocTbl_FreeInodeCount struct {
	Arg0 int
}
type req_AllocTbl_FreeDataCount struct{}
type res_AllocTbl_FreeDataCount struct {
	Arg0 int
}
type req_AllocTbl_Shutdown struct{}
type res_AllocTbl_Shutdown struct {
	Arg0 error
}

// Interface types and implementations
type reqAllocTbl interface {
	is_reqAllocTbl()
}
type resAllocTbl interface {
	is_resAllocTbl()
}

func (r req_AllocTbl_AllocInode) is_reqAllocTbl()     {}
func (r res_AllocTbl_AllocInode) is_resAllocTbl()     {}
func (r req_AllocTbl_AllocData) is_reqAllocTbl()      {}
func (r res_AllocTbl_AllocData) is_resAllocTbl()      {}
func (r req_AllocTbl_FreeInode) is_reqAllocTbl()      {}
func (r res_AllocTbl_FreeInode) is_resAllocTbl()      {}
func (r req_AllocTbl_FreeData) is_reqAllocTbl()       {}
func (r res_AllocTbl_FreeData) is_resAllocTbl()       {}
func (r req_AllocTbl_FreeInodeCount) is_reqAllocTbl() {}
func (r res_AllocTbl_FreeInodeCount) is_resAllocTbl() {}
func (r req_AllocTbl_FreeDataCount) is_reqAllocTbl()  {}
func (r res_AllocTbl_FreeDataCount) is_resAllocTbl()  {}
func (r req_AllocTbl_Shutdown) is_reqAllocTbl()       {}
func (r res_AllocTbl_Shutdown) is_resAllocTbl()       {}

// Type check request/response types
var _ reqAllocTbl = req_AllocTbl_AllocInode{}
var _ resAllocTbl = res_AllocTbl_AllocInode{}
var _ reqAllocTbl = req_AllocTbl_AllocData{}
var _ resAllocTbl = res_AllocTbl_AllocData{}
var _ reqAllocTbl = req_AllocTbl_FreeInode{}
var _ resAllocTbl = res_AllocTbl_FreeInode{}
var _ reqAllocTbl = req_AllocTbl_FreeData{}
var _ resAllocTbl = res_AllocTbl_FreeData{}
var _ reqAllocTbl = req_AllocTbl_FreeInodeCount{}
var _ resAllocTbl = res_AllocTbl_FreeInodeCount{}
var _ reqAllocTbl = req_AllocTbl_FreeDataCount{}
var _ resAllocTbl = res_AllocTbl_FreeDataCount{}
var _ reqAllocTbl = req_AllocTbl_Shutdown{}
var _ resAllocTbl = res_AllocTbl_Shutdown{}

func (alloc *server_AllocTbl) AllocInode() (int, error) {
	alloc.in <- req_AllocTbl_AllocInode{}
	result := (<-alloc.out).(res_AllocTbl_AllocInode)
	return result.Arg0, result.Arg1
}
func (alloc *server_AllocTbl) AllocData() (int, error) {
	alloc.in <- req_AllocTbl_AllocData{}
	result := (<-alloc.out).(res_AllocTbl_AllocData)
	return result.Arg0, result.Arg1
}
func (alloc *server_AllocTbl) FreeInode(inum int) {
	alloc.in <- req_AllocTbl_FreeInode{inum}
	<-alloc.out
}
func (alloc *server_AllocTbl) FreeData(bnum int) {
	alloc.in <- req_AllocTbl_FreeData{bnum}
	<-alloc.out
}
func (alloc *server_AllocTbl) FreeInodeCount() int {
	alloc.in <- req_AllocTbl_FreeInodeCount{}
	result := (<-alloc.out).(res_AllocTbl_FreeInodeCount)
	return result.Arg0
}
func (alloc *server_AllocTbl) FreeDataCount() int {
	alloc.in <- req_AllocTbl_FreeDataCount{}
	result := (<-alloc.out).(res_AllocTbl_FreeDataCount)
	return result.Arg0
}
func (alloc *server_AllocTbl) Shutdown() error {
	alloc.in <- req_AllocTbl_Shutdown{}
	result := (<-alloc.out).(res_AllocTbl_Shutdown)
	return result.Arg0
}
