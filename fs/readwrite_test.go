package fs

import (
	"bytes"
	"testing"

	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/testutils"
)

// pattern fills a buffer with position-dependent bytes so a misplaced
// block shows up as a content mismatch, not just a length error.
func pattern(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i*7 + 3)
	}
	return buf
}

func checkRoundTrip(t *testing.T, size int) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()
	alloc := fs.DeviceInfo().AllocTbl
	freeData := alloc.FreeDataCount()

	content := pattern(size)
	writeFile(t, fs, "blob", content)

	ip := fs.Root().Find("blob")
	if ip.Size() != size {
		testutils.FatalHere(t, "size %d after writing %d bytes", ip.Size(), size)
	}
	// The file and one directory block are the only consumers.
	used := common.TotalBlocks(uint32(size)) + 1
	if got := alloc.FreeDataCount(); got != freeData-used {
		testutils.ErrorHere(t, "free data count %d, expected %d", got, freeData-used)
	}

	if got := readFile(t, fs, "blob"); !bytes.Equal(got, content) {
		testutils.FatalHere(t, "%d byte round trip corrupted content", size)
	}

	// Unaligned interior read, crossing block boundaries.
	if size > 2000 {
		buf := make([]byte, 1000)
		if n := ip.ReadAt(700, buf); n != 1000 {
			testutils.FatalHere(t, "interior read returned %d bytes", n)
		}
		if !bytes.Equal(buf, content[700:1700]) {
			testutils.ErrorHere(t, "interior read mismatch at size %d", size)
		}
	}

	// A read straddling the end clips to the size.
	tail := make([]byte, 100)
	n := ip.ReadAt(size-10, tail)
	if n != 10 || !bytes.Equal(tail[:10], content[size-10:]) {
		testutils.ErrorHere(t, "tail read: %d bytes", n)
	}
	if n := ip.ReadAt(size+10, tail); n != 0 {
		testutils.ErrorHere(t, "read past the end returned %d bytes", n)
	}

	// Truncating returns every block.
	ip.Clear()
	if ip.Size() != 0 {
		testutils.ErrorHere(t, "size %d after clear", ip.Size())
	}
	if got := alloc.FreeDataCount(); got != freeData-1 {
		testutils.ErrorHere(t, "free data count %d after clear, expected %d", got, freeData-1)
	}
}

// 4 KiB stays within the direct pointers.
func TestRoundTripDirect(t *testing.T) {
	checkRoundTrip(t, 4096)
}

// 30000 bytes is 59 blocks and needs the indirect1 tier.
func TestRoundTripIndirect1(t *testing.T) {
	checkRoundTrip(t, 30000)
}

// 100 KiB is 200 blocks and reaches the doubly-indirect tier.
func TestRoundTripIndirect2(t *testing.T) {
	checkRoundTrip(t, 100*1024)
}

// Writing past the current end grows the file; the gap reads as
// zeroes because data blocks are zeroed when freed or formatted.
func TestWriteBeyondEnd(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "gap", []byte("head"))
	ip := fs.Root().Find("gap")
	if _, err := ip.WriteAt(1000, []byte("tail")); err != nil {
		testutils.FatalHere(t, "write at offset 1000 failed: %s", err)
	}
	if ip.Size() != 1004 {
		testutils.FatalHere(t, "size %d, expected 1004", ip.Size())
	}

	buf := make([]byte, 1004)
	if n := ip.ReadAt(0, buf); n != 1004 {
		testutils.FatalHere(t, "read returned %d bytes", n)
	}
	if !bytes.Equal(buf[:4], []byte("head")) || !bytes.Equal(buf[1000:], []byte("tail")) {
		testutils.ErrorHere(t, "grown file content wrong at the ends")
	}
	for i, b := range buf[4:1000] {
		if b != 0 {
			testutils.FatalHere(t, "gap byte %d is %d, expected 0", i+4, b)
		}
	}
}

// Overwriting in place never changes the size or allocates.
func TestOverwriteInPlace(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()
	alloc := fs.DeviceInfo().AllocTbl

	writeFile(t, fs, "fixed", pattern(2048))
	free := alloc.FreeDataCount()

	ip := fs.Root().Find("fixed")
	if _, err := ip.WriteAt(512, bytes.Repeat([]byte{0xff}, 512)); err != nil {
		testutils.FatalHere(t, "overwrite failed: %s", err)
	}
	if ip.Size() != 2048 {
		testutils.ErrorHere(t, "size changed to %d", ip.Size())
	}
	if got := alloc.FreeDataCount(); got != free {
		testutils.ErrorHere(t, "overwrite allocated blocks: %d -> %d", free, got)
	}

	buf := make([]byte, 2048)
	ip.ReadAt(0, buf)
	want := pattern(2048)
	copy(want[512:1024], bytes.Repeat([]byte{0xff}, 512))
	if !bytes.Equal(buf, want) {
		testutils.ErrorHere(t, "overwrite leaked outside its range")
	}
}

// Exhausting the data area mid-grow is an error and the inode is left
// exactly as it was.
func TestWriteExhaustsData(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()
	alloc := fs.DeviceInfo().AllocTbl

	writeFile(t, fs, "big", pattern(1024))
	ip := fs.Root().Find("big")
	free := alloc.FreeDataCount()

	// Far more than the 1021-block data area can hold.
	_, err := ip.WriteAt(0, make([]byte, 1024*1024))
	if err != common.ENOSPC {
		testutils.FatalHere(t, "oversized write: got %v, expected ENOSPC", err)
	}
	if ip.Size() != 1024 {
		testutils.ErrorHere(t, "failed grow changed the size to %d", ip.Size())
	}
	if got := alloc.FreeDataCount(); got != free {
		testutils.ErrorHere(t, "failed grow leaked blocks: %d -> %d", free, got)
	}
	if got := readFile(t, fs, "big"); !bytes.Equal(got, pattern(1024)) {
		testutils.ErrorHere(t, "failed grow corrupted existing content")
	}
}
