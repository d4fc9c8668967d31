package common

const (
	// BlockSize is the number of bytes in a device block. Every read and
	// write against a BlockDevice moves exactly one block.
	BlockSize = 512

	// SuperMagic identifies a formatted easyfs image.
	SuperMagic = 0x3b800001

	NumDirect     = 28 // direct block pointers in a DiskInode
	IndirectCount = BlockSize / 4
	NameLenLimit  = 27 // longest directory entry name, NUL padded to 28

	// Bounds (in file-relative block numbers) of the three indirection
	// tiers. Blocks below Indirect1Bound past NumDirect resolve through
	// the indirect1 block, the remainder through indirect2.
	Indirect1Bound = NumDirect + IndirectCount
	Indirect2Bound = Indirect1Bound + IndirectCount*IndirectCount

	InodeSize      = 128 // encoded width of a DiskInode
	DirentSize     = 32  // encoded width of a DirEntry
	InodesPerBlock = BlockSize / InodeSize

	// BitsPerBlock is the number of allocation bits carried by one
	// bitmap block.
	BitsPerBlock = BlockSize * 8

	// RootInode is the inode number of the root directory, allocated
	// first at format time.
	RootInode = 0

	// NumBufs is the number of slots in the block cache.
	NumBufs = 16

	NoBlock = -1 // an invalid/absent block number
	NoBit   = -1 // returned by bitmap scans when no bit is free
)
