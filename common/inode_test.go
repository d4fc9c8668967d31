package common

import (
	"testing"
)

// Sizes at a few interesting points of the direct/indirect1/indirect2
// ladder, and the block count a file of that size should consume.
func TestTotalBlocks(t *testing.T) {
	directCap := NumDirect * BlockSize            // 14336
	indirect1Cap := Indirect1Bound * BlockSize    // 79872
	var tests = []struct {
		size   uint32
		blocks int
	}{
		{0, 0},
		{1, 1},
		{BlockSize, 1},
		{BlockSize + 1, 2},
		{uint32(directCap), NumDirect},
		// first byte past the direct tier brings in the indirect1 block
		{uint32(directCap) + 1, NumDirect + 1 + 1},
		{uint32(indirect1Cap), Indirect1Bound + 1},
		// first byte past indirect1 brings in indirect2 and one sub-block
		{uint32(indirect1Cap) + 1, Indirect1Bound + 1 + 1 + 1 + 1},
		// a full indirect2 sub-block later, a second sub-block appears
		{uint32((Indirect1Bound + IndirectCount) * BlockSize), Indirect1Bound + IndirectCount + 3},
		{uint32((Indirect1Bound+IndirectCount)*BlockSize) + 1, Indirect1Bound + IndirectCount + 1 + 3 + 1},
	}
	for _, test := range tests {
		if got := TotalBlocks(test.size); got != test.blocks {
			t.Errorf("TotalBlocks(%d): got %d, want %d", test.size, got, test.blocks)
		}
	}
}

func TestBlocksNumNeeded(t *testing.T) {
	var tests = []struct {
		from, to uint32
		need     int
	}{
		{0, 1024, 2},
		{1024, 1024, 0},
		{NumDirect * BlockSize, NumDirect*BlockSize + 1, 2}, // data + indirect1
		{0, NumDirect * BlockSize, NumDirect},
	}
	for _, test := range tests {
		di := &DiskInode{Size: test.from}
		if got := di.BlocksNumNeeded(test.to); got != test.need {
			t.Errorf("grow %d -> %d: got %d blocks, want %d", test.from, test.to, got, test.need)
		}
	}
}

func TestBlocksNumNeededShrinkPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("shrinking BlocksNumNeeded did not panic")
		}
	}()
	di := &DiskInode{Size: 1024}
	di.BlocksNumNeeded(512)
}

func TestDiskInodeInit(t *testing.T) {
	di := &DiskInode{Size: 77, Indirect1: 9, Type: FileInode}
	di.Init(DirInode)
	if di.Size != 0 || di.Indirect1 != 0 {
		t.Errorf("Init left stale fields: %+v", di)
	}
	if !di.IsDir() || di.IsFile() {
		t.Errorf("Init(DirInode) type check failed")
	}
}

// The pointer fields sit at fixed byte offsets; a mount of an image
// written by another implementation depends on them.
func TestDiskInodeLayout(t *testing.T) {
	di := &DiskInode{Size: 0x11223344, Indirect1: 0x0a0b0c0d, Indirect2: 0x01020304, Type: DirInode}
	di.Direct[0] = 0xdeadbeef
	di.Direct[NumDirect-1] = 0xcafef00d

	buf := make([]byte, InodeSize)
	di.Encode(buf)
	if buf[0] != 0x44 || buf[3] != 0x11 {
		t.Errorf("Size not little-endian at offset 0: % x", buf[0:4])
	}
	if buf[116] != 0x0d || buf[119] != 0x0a {
		t.Errorf("Indirect1 not at offset 116: % x", buf[116:120])
	}
	if buf[124] != 1 {
		t.Errorf("Type not at offset 124: % x", buf[124:128])
	}

	back := new(DiskInode)
	back.Decode(buf)
	if *back != *di {
		t.Errorf("decode mismatch: %+v != %+v", back, di)
	}
}

func TestDirEntryNames(t *testing.T) {
	de := NewDirEntry("hello", 42)
	if de.Name() != "hello" {
		t.Errorf("got name %q, want %q", de.Name(), "hello")
	}
	if de.IsEmpty() {
		t.Errorf("live entry reported as tombstone")
	}

	long := "abcdefghijklmnopqrstuvwxyz0" // exactly NameLenLimit bytes
	de = NewDirEntry(long, 7)
	if de.Name() != long {
		t.Errorf("got name %q, want %q", de.Name(), long)
	}

	var zero DirEntry
	if !zero.IsEmpty() {
		t.Errorf("zero entry not recognized as tombstone")
	}
}

func TestDirEntryTooLongPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("oversized entry name did not panic")
		}
	}()
	NewDirEntry("abcdefghijklmnopqrstuvwxyz01", 1)
}

func TestInodeGeometry(t *testing.T) {
	devinfo := &DeviceInfo{
		TotalBlocks:       2048,
		InodeBitmapBlocks: 1,
		InodeAreaBlocks:   1024,
		DataBitmapBlocks:  1,
		DataAreaBlocks:    1021,
	}
	if devinfo.InodeAreaStart() != 2 {
		t.Errorf("inode area starts at %d, want 2", devinfo.InodeAreaStart())
	}
	if devinfo.DataAreaStart() != 1027 {
		t.Errorf("data area starts at %d, want 1027", devinfo.DataAreaStart())
	}
	for _, inum := range []int{0, 1, InodesPerBlock, 4095} {
		bnum, offset := devinfo.InodePos(inum)
		if got := devinfo.InodeNum(bnum, offset); got != inum {
			t.Errorf("InodeNum(InodePos(%d)) = %d", inum, got)
		}
	}
	bnum, offset := devinfo.InodePos(5)
	if bnum != devinfo.InodeAreaStart()+1 || offset != InodeSize {
		t.Errorf("InodePos(5) = (%d, %d)", bnum, offset)
	}
}
