package common

// BlockDevice is addressable storage exposing fixed-size block read
// and write. The position is a byte offset and is always block
// aligned; each call moves exactly one block.
type BlockDevice interface {
	Read(buf []byte, pos int64) error
	Write(buf []byte, pos int64) error
	Close() error
}

// BlockCache stages device blocks in memory. GetBlock pins a block in
// the cache, fetching it from the device on first reference; PutBlock
// releases the pin. Flush writes every dirty cached block back to the
// device in one pass.
type BlockCache interface {
	GetBlock(bnum int) *CacheBlock
	PutBlock(cb *CacheBlock)
	Flush()
	Shutdown() error
}

// AllocTbl hands out and reclaims inode slots and data blocks from the
// on-disk bitmaps. AllocData returns an absolute block number in the
// data area; FreeData takes the same and zeroes the block content
// before clearing its bit. Exhaustion is reported as ENFILE (inodes)
// or ENOSPC (data), not treated as fatal.
type AllocTbl interface {
	AllocInode() (int, error)
	AllocData() (int, error)
	FreeInode(inum int)
	FreeData(bnum int)
	FreeInodeCount() int
	FreeDataCount() int
	Shutdown() error
}

// A Record is a fixed-width structure stored inside a block at some
// offset, with a stable little-endian encoding.
type Record interface {
	RecordLen() int
	Decode(buf []byte)
	Encode(buf []byte)
}

// DeviceInfo captures the geometry of a formatted device: where the
// bitmaps and the inode/data areas live. It is fixed at format time
// and must be identical on every mount of the same image.
type DeviceInfo struct {
	TotalBlocks       int
	InodeBitmapBlocks int
	InodeAreaBlocks   int
	DataBitmapBlocks  int
	DataAreaBlocks    int

	AllocTbl AllocTbl // the allocation table for this device, set at mount
}

// Block 0 is the superblock; the areas follow in a fixed order.
func (d *DeviceInfo) InodeBitmapStart() int { return 1 }
func (d *DeviceInfo) InodeAreaStart() int   { return 1 + d.InodeBitmapBlocks }
func (d *DeviceInfo) DataBitmapStart() int  { return d.InodeAreaStart() + d.InodeAreaBlocks }
func (d *DeviceInfo) DataAreaStart() int    { return d.DataBitmapStart() + d.DataBitmapBlocks }

// Inodes is the number of inode slots tracked by the inode bitmap.
func (d *DeviceInfo) Inodes() int { return d.InodeBitmapBlocks * BitsPerBlock }

// InodePos converts an inode number into the block holding its record
// and the byte offset of the record within that block. Pure geometry;
// the result never changes for the lifetime of the filesystem.
func (d *DeviceInfo) InodePos(inum int) (bnum, offset int) {
	bnum = d.InodeAreaStart() + inum/InodesPerBlock
	offset = (inum % InodesPerBlock) * InodeSize
	return bnum, offset
}

// InodeNum is the inverse of InodePos.
func (d *DeviceInfo) InodeNum(bnum, offset int) int {
	return (bnum-d.InodeAreaStart())*InodesPerBlock + offset/InodeSize
}

// FileMode distinguishes directories from regular files in stat
// results. There are no permission bits.
type FileMode int

const (
	ModeFile FileMode = iota
	ModeDir
)

func (m FileMode) String() string {
	if m == ModeDir {
		return "directory"
	}
	return "regular file"
}

// StatInfo is the stat result surfaced to the syscall layer. Nlink is
// computed by scanning the directory; it is never stored on disk.
type StatInfo struct {
	Ino   int
	Nlink int
	Mode  FileMode
}
