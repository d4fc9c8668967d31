package fs

import (
	"fmt"

	"github.com/teachos/easyfs/common"
)

// Inode is a lightweight handle to one on-disk inode record,
// identified by the block holding it and the record's offset within
// that block. It owns no file data; it is a locator plus the
// capability to operate on that location. Handles to the same record
// are interchangeable and never deduplicated.
//
// Methods that scan or mutate directory content are only meaningful on
// the root directory; the single-directory namespace means no other
// inode ever holds entries.
type Inode struct {
	blocknum int
	offset   int
	fs       *FileSystem
}

// readDiskInode decodes the record and hands it to f for inspection.
func (ip *Inode) readDiskInode(f func(di *common.DiskInode)) {
	cb := ip.fs.bcache.GetBlock(ip.blocknum)
	di := new(common.DiskInode)
	cb.ReadRecord(ip.offset, di)
	ip.fs.bcache.PutBlock(cb)
	f(di)
}

// modifyDiskInode decodes the record, lets f mutate it (and reach
// other blocks through the cache) and encodes it back.
func (ip *Inode) modifyDiskInode(f func(di *common.DiskInode)) {
	cb := ip.fs.bcache.GetBlock(ip.blocknum)
	di := new(common.DiskInode)
	cb.ModifyRecord(ip.offset, di, func() {
		f(di)
	})
	ip.fs.bcache.PutBlock(cb)
}

// dirEntries is the entry count of a directory inode. A size that is
// not a whole number of entries is corruption.
func dirEntries(di *common.DiskInode) int {
	if !di.IsDir() {
		panic("inode is not a directory")
	}
	if di.Size%common.DirentSize != 0 {
		panic(fmt.Sprintf("directory size %d is not a multiple of the entry width", di.Size))
	}
	return int(di.Size) / common.DirentSize
}

// readEntry decodes directory entry i out of the directory's content.
func (ip *Inode) readEntry(di *common.DiskInode, i int) *common.DirEntry {
	buf := make([]byte, common.DirentSize)
	if n := di.ReadAt(i*common.DirentSize, buf, ip.fs.bcache); n != common.DirentSize {
		panic(fmt.Sprintf("short read of directory entry %d: %d bytes", i, n))
	}
	de := new(common.DirEntry)
	de.Decode(buf)
	return de
}

// findInodeID scans the directory for a name match and returns the
// inode number, or NoBit when absent. Tombstones have an empty name
// and never match.
func (ip *Inode) findInodeID(name string, di *common.DiskInode) int {
	count := dirEntries(di)
	for i := 0; i < count; i++ {
		de := ip.readEntry(di, i)
		if !de.IsEmpty() && de.Name() == name {
			return int(de.Inum)
		}
	}
	return common.NoBit
}

// countLinks is the on-demand link count: how many live entries carry
// the inode number. Nothing on disk stores this.
func (ip *Inode) countLinks(inum int, di *common.DiskInode) int {
	count := dirEntries(di)
	links := 0
	for i := 0; i < count; i++ {
		de := ip.readEntry(di, i)
		if !de.IsEmpty() && int(de.Inum) == inum {
			links++
		}
	}
	return links
}

// increaseSize grows the inode to newSize, pre-allocating exactly the
// blocks the grow consumes and handing them to the record layer to
// wire in. On exhaustion nothing is retained: blocks already taken go
// back and the inode is untouched.
func (ip *Inode) increaseSize(newSize uint32, di *common.DiskInode) error {
	if newSize <= di.Size {
		return nil
	}
	need := di.BlocksNumNeeded(newSize)
	blocks := make([]uint32, 0, need)
	for i := 0; i < need; i++ {
		b, err := ip.fs.alloc().AllocData()
		if err != nil {
			for _, taken := range blocks {
				ip.fs.alloc().FreeData(int(taken))
			}
			return err
		}
		blocks = append(blocks, uint32(b))
	}
	di.IncreaseSize(newSize, blocks, ip.fs.bcache)
	return nil
}

// appendEntry writes one new directory entry after the current last
// one, growing the directory by one entry width.
func (ip *Inode) appendEntry(name string, inum int) error {
	var rerr error
	ip.modifyDiskInode(func(di *common.DiskInode) {
		count := dirEntries(di)
		if err := ip.increaseSize(uint32((count+1)*common.DirentSize), di); err != nil {
			rerr = err
			return
		}
		buf := make([]byte, common.DirentSize)
		common.NewDirEntry(name, uint32(inum)).Encode(buf)
		di.WriteAt(count*common.DirentSize, buf, ip.fs.bcache)
	})
	return rerr
}

func checkName(name string) error {
	if name == "" || len(name) > common.NameLenLimit {
		return common.EINVAL
	}
	return nil
}

// Find resolves a name to a new handle, or nil when the name is
// absent.
func (ip *Inode) Find(name string) *Inode {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	return ip.findLocked(name)
}

func (ip *Inode) findLocked(name string) *Inode {
	inum := common.NoBit
	ip.readDiskInode(func(di *common.DiskInode) {
		inum = ip.findInodeID(name, di)
	})
	if inum == common.NoBit {
		return nil
	}
	bnum, offset := ip.fs.devinfo.InodePos(inum)
	return &Inode{blocknum: bnum, offset: offset, fs: ip.fs}
}

// Create allocates a fresh inode, initializes it as an empty file and
// enters it into the directory under the given name. An existing name
// is rejected with EEXIST.
func (ip *Inode) Create(name string) (*Inode, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()

	if ip.findLocked(name) != nil {
		return nil, common.EEXIST
	}

	inum, err := ip.fs.alloc().AllocInode()
	if err != nil {
		return nil, err
	}
	bnum, offset := ip.fs.devinfo.InodePos(inum)
	created := &Inode{blocknum: bnum, offset: offset, fs: ip.fs}
	created.modifyDiskInode(func(di *common.DiskInode) {
		di.Init(common.FileInode)
	})

	if err := ip.appendEntry(name, inum); err != nil {
		ip.fs.alloc().FreeInode(inum)
		return nil, err
	}
	ip.fs.bcache.Flush()
	return created, nil
}

// CreateHardLink enters newname as a second name for whatever inode
// oldname resolves to. No inode is allocated; sharing the inode number
// across entries is the entire mechanism. A self-link is rejected.
func (ip *Inode) CreateHardLink(oldname, newname string) error {
	if err := checkName(oldname); err != nil {
		return err
	}
	if err := checkName(newname); err != nil {
		return err
	}
	if oldname == newname {
		return common.EINVAL
	}
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()

	inum := common.NoBit
	ip.readDiskInode(func(di *common.DiskInode) {
		inum = ip.findInodeID(oldname, di)
	})
	if inum == common.NoBit {
		return common.ENOENT
	}
	if err := ip.appendEntry(newname, inum); err != nil {
		return err
	}
	ip.fs.bcache.Flush()
	return nil
}

// RemoveHardLink drops one name. The entry is zeroed in place and
// becomes a tombstone; the directory is never compacted. When the name
// was the last one referencing its inode, the inode's data and
// indirection blocks go back to the allocator along with the inode
// slot itself.
func (ip *Inode) RemoveHardLink(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()

	inum := common.NoBit
	links := 0
	ip.readDiskInode(func(di *common.DiskInode) {
		inum = ip.findInodeID(name, di)
		if inum != common.NoBit {
			links = ip.countLinks(inum, di)
		}
	})
	if inum == common.NoBit {
		return common.ENOENT
	}

	empty := make([]byte, common.DirentSize)
	ip.modifyDiskInode(func(di *common.DiskInode) {
		count := dirEntries(di)
		for i := 0; i < count; i++ {
			de := ip.readEntry(di, i)
			if !de.IsEmpty() && de.Name() == name {
				di.WriteAt(i*common.DirentSize, empty, ip.fs.bcache)
			}
		}
	})

	if links == 1 {
		bnum, offset := ip.fs.devinfo.InodePos(inum)
		dead := &Inode{blocknum: bnum, offset: offset, fs: ip.fs}
		dead.clearLocked()
		ip.fs.alloc().FreeInode(inum)
	}
	ip.fs.bcache.Flush()
	return nil
}

// InodeNumberTimes counts how many live entries carry the given inode
// number; this is the only notion of a link count in the system.
func (ip *Inode) InodeNumberTimes(inum int) int {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	links := 0
	ip.readDiskInode(func(di *common.DiskInode) {
		links = ip.countLinks(inum, di)
	})
	return links
}

// Ls lists every live name in the directory.
func (ip *Inode) Ls() []string {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	var names []string
	ip.readDiskInode(func(di *common.DiskInode) {
		count := dirEntries(di)
		for i := 0; i < count; i++ {
			de := ip.readEntry(di, i)
			if !de.IsEmpty() {
				names = append(names, de.Name())
			}
		}
	})
	return names
}

// Entries returns the directory's raw entries, tombstones included.
// Listing and resolution skip tombstones; this is for inspection
// tooling that wants to see them.
func (ip *Inode) Entries() []*common.DirEntry {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	var entries []*common.DirEntry
	ip.readDiskInode(func(di *common.DiskInode) {
		count := dirEntries(di)
		for i := 0; i < count; i++ {
			entries = append(entries, ip.readEntry(di, i))
		}
	})
	return entries
}

// DiskInode returns a copy of the on-disk record.
func (ip *Inode) DiskInode() *common.DiskInode {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	var copied common.DiskInode
	ip.readDiskInode(func(di *common.DiskInode) {
		copied = *di
	})
	return &copied
}

// ReadAt reads file content; it never reads past the current size and
// returns the number of bytes copied.
func (ip *Inode) ReadAt(offset int, buf []byte) int {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	n := 0
	ip.readDiskInode(func(di *common.DiskInode) {
		n = di.ReadAt(offset, buf, ip.fs.bcache)
	})
	return n
}

// WriteAt writes file content at the offset, growing the file first
// when the write extends past the current size, and flushes before
// returning.
func (ip *Inode) WriteAt(offset int, buf []byte) (int, error) {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	n := 0
	var rerr error
	ip.modifyDiskInode(func(di *common.DiskInode) {
		if err := ip.increaseSize(uint32(offset+len(buf)), di); err != nil {
			rerr = err
			return
		}
		n = di.WriteAt(offset, buf, ip.fs.bcache)
	})
	if rerr != nil {
		return 0, rerr
	}
	ip.fs.bcache.Flush()
	return n, nil
}

// Clear truncates the file to zero length, returning every block it
// occupied to the allocator. The inode itself stays allocated.
func (ip *Inode) Clear() {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	ip.clearLocked()
	ip.fs.bcache.Flush()
}

func (ip *Inode) clearLocked() {
	ip.modifyDiskInode(func(di *common.DiskInode) {
		size := di.Size
		collected := di.ClearSize(ip.fs.bcache)
		if len(collected) != common.TotalBlocks(size) {
			panic(fmt.Sprintf("clear of a %d byte inode collected %d blocks, want %d",
				size, len(collected), common.TotalBlocks(size)))
		}
		for _, bnum := range collected {
			ip.fs.alloc().FreeData(int(bnum))
		}
	})
}

// Size is the current byte size of the file.
func (ip *Inode) Size() int {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()
	size := 0
	ip.readDiskInode(func(di *common.DiskInode) {
		size = int(di.Size)
	})
	return size
}

// IsDir reports whether the inode is a directory.
func (ip *Inode) IsDir() bool {
	dir := false
	ip.readDiskInode(func(di *common.DiskInode) {
		dir = di.IsDir()
	})
	return dir
}

// InodeNumber derives the handle's inode number from its location;
// the inverse of the allocator's geometry function.
func (ip *Inode) InodeNumber() int {
	return ip.fs.devinfo.InodeNum(ip.blocknum, ip.offset)
}

// Stat reports the inode number, the scanned link count and the mode.
func (ip *Inode) Stat() common.StatInfo {
	ip.fs.m.Lock()
	defer ip.fs.m.Unlock()

	ino := ip.InodeNumber()
	mode := common.ModeFile
	ip.readDiskInode(func(di *common.DiskInode) {
		if di.IsDir() {
			mode = common.ModeDir
		}
	})
	links := 0
	root := ip.fs.rootInode()
	root.readDiskInode(func(di *common.DiskInode) {
		links = root.countLinks(ino, di)
	})
	return common.StatInfo{Ino: ino, Nlink: links, Mode: mode}
}
