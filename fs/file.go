package fs

import (
	"io"
	"sync"

	"github.com/teachos/easyfs/common"
)

// OpenFlags are the open(2)-style flags understood by Open. The access
// mode defaults to read-only.
type OpenFlags uint32

const (
	O_RDONLY OpenFlags = 0x000
	O_WRONLY OpenFlags = 0x001
	O_RDWR   OpenFlags = 0x002
	O_CREATE OpenFlags = 0x200
	O_TRUNC  OpenFlags = 0x400
)

// ReadWrite derives the access bits from the flags.
func (flags OpenFlags) ReadWrite() (readable, writable bool) {
	switch {
	case flags&O_RDWR != 0:
		return true, true
	case flags&O_WRONLY != 0:
		return false, true
	default:
		return true, false
	}
}

// File couples an inode handle with a seek position and the access
// mode it was opened with.
type File struct {
	inode    *Inode
	readable bool
	writable bool

	m      sync.Mutex // guards pos and closed
	pos    int
	closed bool
}

const (
	SEEK_SET = 0
	SEEK_CUR = 1
	SEEK_END = 2
)

// Inode exposes the underlying inode handle, e.g. for stat.
func (f *File) Inode() *Inode { return f.inode }

func (f *File) Read(buf []byte) (int, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.closed || !f.readable {
		return 0, common.EBADF
	}
	n := f.inode.ReadAt(f.pos, buf)
	f.pos += n
	if n == 0 && len(buf) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *File) Write(buf []byte) (int, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.closed || !f.writable {
		return 0, common.EBADF
	}
	n, err := f.inode.WriteAt(f.pos, buf)
	f.pos += n
	return n, err
}

// Seek repositions the file offset and returns the new position.
func (f *File) Seek(offset int, whence int) (int, error) {
	f.m.Lock()
	defer f.m.Unlock()
	if f.closed {
		return 0, common.EBADF
	}
	pos := f.pos
	switch whence {
	case SEEK_SET:
		pos = offset
	case SEEK_CUR:
		pos += offset
	case SEEK_END:
		pos = f.inode.Size() + offset
	default:
		return 0, common.EINVAL
	}
	if pos < 0 {
		return 0, common.EINVAL
	}
	f.pos = pos
	return pos, nil
}

func (f *File) Close() error {
	f.m.Lock()
	defer f.m.Unlock()
	if f.closed {
		return common.EBADF
	}
	f.closed = true
	return nil
}
