// Package fs ties the block cache and the allocation table together
// into a mountable filesystem with a single root directory, and
// exposes the inode and open-file operations the syscall layer
// invokes.
package fs

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/teachos/easyfs/alloctbl"
	"github.com/teachos/easyfs/bcache"
	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/device"
)

type FileSystem struct {
	dev     common.BlockDevice
	devinfo *common.DeviceInfo
	bcache  common.BlockCache
	super   *common.SuperBlock

	// The filesystem-wide allocator lock. Every operation that can
	// allocate, deallocate, or needs a stable view of the directory
	// holds it for the duration of the logical operation. It is always
	// taken before any per-block access and never re-acquired: code
	// running under it only calls the lock-free cores.
	m sync.Mutex
}

// NewFileSystem mounts a formatted device: reads and validates the
// superblock, then brings up the cache and the allocation table.
func NewFileSystem(dev common.BlockDevice) (*FileSystem, error) {
	devinfo, super, err := common.GetDeviceInfo(dev)
	if err != nil {
		return nil, err
	}

	fs := &FileSystem{
		dev:     dev,
		devinfo: devinfo,
		super:   super,
		bcache:  bcache.NewLRUCache(dev, common.NumBufs),
	}
	fs.devinfo.AllocTbl = alloctbl.NewAllocTbl(fs.devinfo, fs.bcache)

	logrus.WithField("total_blocks", devinfo.TotalBlocks).
		WithField("inodes", devinfo.Inodes()).
		Debug("mounted filesystem")
	return fs, nil
}

// OpenFileSystemFile mounts the image stored in a regular file.
func OpenFileSystemFile(filename string) (*FileSystem, error) {
	dev, err := device.NewFileDevice(filename)
	if err != nil {
		return nil, err
	}
	fs, err := NewFileSystem(dev)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return fs, nil
}

// Mkfs formats the device: computes the geometry from the total block
// count and the inode bitmap size, zeroes every block, writes the
// superblock, allocates the root inode and initializes it as an empty
// directory. The returned filesystem is already mounted.
//
// Layout: block 0 is the superblock; the inode bitmap, inode area,
// data bitmap and data area follow. One inode bitmap block tracks 4096
// inode slots; the blocks left after the inode side are split between
// the data bitmap and the data area so that one bitmap block serves
// 4096 data blocks.
func Mkfs(dev common.BlockDevice, totalBlocks, inodeBitmapBlocks int, volumeID [16]byte) (*FileSystem, error) {
	if totalBlocks < 1 || inodeBitmapBlocks < 1 {
		return nil, common.EINVAL
	}
	inodeNum := inodeBitmapBlocks * common.BitsPerBlock
	inodeAreaBlocks := (inodeNum*common.InodeSize + common.BlockSize - 1) / common.BlockSize
	remaining := totalBlocks - 1 - inodeBitmapBlocks - inodeAreaBlocks
	if remaining < 2 {
		return nil, common.ENOSPC
	}
	dataBitmapBlocks := (remaining + common.BitsPerBlock) / (common.BitsPerBlock + 1)

	devinfo := &common.DeviceInfo{
		TotalBlocks:       totalBlocks,
		InodeBitmapBlocks: inodeBitmapBlocks,
		InodeAreaBlocks:   inodeAreaBlocks,
		DataBitmapBlocks:  dataBitmapBlocks,
		DataAreaBlocks:    remaining - dataBitmapBlocks,
	}

	fs := &FileSystem{
		dev:     dev,
		devinfo: devinfo,
		super:   common.NewSuperBlock(devinfo, volumeID),
		bcache:  bcache.NewLRUCache(dev, common.NumBufs),
	}

	for i := 0; i < totalBlocks; i++ {
		cb := fs.bcache.GetBlock(i)
		cb.Zero()
		fs.bcache.PutBlock(cb)
	}

	cb := fs.bcache.GetBlock(0)
	sb := new(common.SuperBlock)
	cb.ModifyRecord(0, sb, func() {
		*sb = *fs.super
	})
	fs.bcache.PutBlock(cb)

	fs.devinfo.AllocTbl = alloctbl.NewAllocTbl(fs.devinfo, fs.bcache)
	inum, err := fs.devinfo.AllocTbl.AllocInode()
	if err != nil {
		return nil, err
	}
	if inum != common.RootInode {
		panic(fmt.Sprintf("fresh bitmap allocated inode %d for the root", inum))
	}
	fs.rootInode().modifyDiskInode(func(di *common.DiskInode) {
		di.Init(common.DirInode)
	})
	fs.bcache.Flush()

	logrus.WithField("total_blocks", totalBlocks).
		WithField("inodes", inodeNum).
		WithField("data_blocks", devinfo.DataAreaBlocks).
		Info("formatted filesystem")
	return fs, nil
}

// Root returns a handle to the root directory inode.
func (fs *FileSystem) Root() *Inode {
	return fs.rootInode()
}

func (fs *FileSystem) rootInode() *Inode {
	bnum, offset := fs.devinfo.InodePos(common.RootInode)
	return &Inode{blocknum: bnum, offset: offset, fs: fs}
}

func (fs *FileSystem) alloc() common.AllocTbl {
	return fs.devinfo.AllocTbl
}

// DeviceInfo exposes the mounted geometry.
func (fs *FileSystem) DeviceInfo() *common.DeviceInfo {
	return fs.devinfo
}

// SuperBlock returns the superblock as read at mount (or written at
// format) time.
func (fs *FileSystem) SuperBlock() *common.SuperBlock {
	return fs.super
}

// Flush writes every dirty cached block to the device.
func (fs *FileSystem) Flush() {
	fs.bcache.Flush()
}

// Shutdown flushes the cache and stops the component servers. The
// device is closed last.
func (fs *FileSystem) Shutdown() error {
	fs.m.Lock()
	defer fs.m.Unlock()

	fs.bcache.Flush()
	if err := fs.alloc().Shutdown(); err != nil {
		return err
	}
	if err := fs.bcache.Shutdown(); err != nil {
		return err
	}
	return fs.dev.Close()
}
