package common

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// DirEntry is one fixed-width directory entry: a NUL-padded name and
// the inode number it refers to. A directory's content, viewed as an
// array of these records, is the whole name-to-inode mapping; several
// entries carrying the same inode number are what a hard link is.
// A fully zeroed entry is a tombstone left behind by unlink and is
// skipped by every scan.
type DirEntry struct {
	name [DirentSize - 4]byte
	Inum uint32
}

// NewDirEntry builds an entry for the given name. The name must fit
// the fixed-width field; callers validate before constructing.
func NewDirEntry(name string, inum uint32) *DirEntry {
	if len(name) > NameLenLimit {
		panic(fmt.Sprintf("directory entry name %q longer than %d bytes", name, NameLenLimit))
	}
	de := &DirEntry{Inum: inum}
	copy(de.name[:], name)
	return de
}

func (de *DirEntry) Name() string {
	end := bytes.IndexByte(de.name[:], 0)
	if end == -1 {
		end = len(de.name)
	}
	return string(de.name[:end])
}

// IsEmpty reports whether the entry is a tombstone.
func (de *DirEntry) IsEmpty() bool {
	return de.Inum == 0 && de.name[0] == 0
}

func (de *DirEntry) RecordLen() int { return DirentSize }

func (de *DirEntry) Decode(buf []byte) {
	copy(de.name[:], buf[:DirentSize-4])
	de.Inum = binary.LittleEndian.Uint32(buf[DirentSize-4:])
}

func (de *DirEntry) Encode(buf []byte) {
	copy(buf[:DirentSize-4], de.name[:])
	binary.LittleEndian.PutUint32(buf[DirentSize-4:], de.Inum)
}

func (de *DirEntry) String() string {
	return fmt.Sprintf("%s -> inode %d", de.Name(), de.Inum)
}
