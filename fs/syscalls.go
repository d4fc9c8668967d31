package fs

import (
	"strings"

	"github.com/teachos/easyfs/common"
)

// The operations in this file are the surface a syscall layer invokes.
// The kernel ABI's 0/-1 status codes map to nil/non-nil errors here;
// the caller translates at its boundary.

// cleanName resolves a path against the single-directory namespace:
// an optional leading slash, then a plain name.
func cleanName(path string) (string, error) {
	name := strings.TrimPrefix(path, "/")
	if name == "" || strings.Contains(name, "/") {
		return "", common.EINVAL
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	return name, nil
}

// Open resolves the path against the root directory. O_CREATE creates
// the file if absent and truncates it if present; O_TRUNC truncates an
// existing file. Without O_CREATE an absent name is ENOENT.
func (fs *FileSystem) Open(path string, flags OpenFlags) (*File, error) {
	name, err := cleanName(path)
	if err != nil {
		return nil, err
	}
	root := fs.rootInode()
	readable, writable := flags.ReadWrite()

	var ip *Inode
	if flags&O_CREATE != 0 {
		if ip = root.Find(name); ip != nil {
			ip.Clear()
		} else {
			ip, err = root.Create(name)
			if err != nil {
				return nil, err
			}
		}
	} else {
		if ip = root.Find(name); ip == nil {
			return nil, common.ENOENT
		}
		if flags&O_TRUNC != 0 {
			ip.Clear()
		}
	}
	return &File{inode: ip, readable: readable, writable: writable}, nil
}

// Link makes newpath a second name for the inode oldpath resolves to.
func (fs *FileSystem) Link(oldpath, newpath string) error {
	oldname, err := cleanName(oldpath)
	if err != nil {
		return err
	}
	newname, err := cleanName(newpath)
	if err != nil {
		return err
	}
	return fs.rootInode().CreateHardLink(oldname, newname)
}

// Unlink removes one name, reclaiming the inode when it was the last.
func (fs *FileSystem) Unlink(path string) error {
	name, err := cleanName(path)
	if err != nil {
		return err
	}
	return fs.rootInode().RemoveHardLink(name)
}

// HardLinks is the scanned link count for an inode number.
func (fs *FileSystem) HardLinks(inum int) int {
	return fs.rootInode().InodeNumberTimes(inum)
}

// Stat reports inode number, link count and mode for an open file.
func (fs *FileSystem) Stat(f *File) (common.StatInfo, error) {
	f.m.Lock()
	closed := f.closed
	f.m.Unlock()
	if closed {
		return common.StatInfo{}, common.EBADF
	}
	return f.inode.Stat(), nil
}

// List names every live entry in the root directory.
func (fs *FileSystem) List() []string {
	return fs.rootInode().Ls()
}

// Truncate discards the content of an open file.
func (fs *FileSystem) Truncate(f *File) error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.closed || !f.writable {
		return common.EBADF
	}
	f.inode.Clear()
	return nil
}
