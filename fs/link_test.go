package fs

import (
	"bytes"
	"testing"

	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/testutils"
)

func writeFile(t *testing.T, fs *FileSystem, name string, content []byte) {
	f, err := fs.Open(name, O_CREATE|O_WRONLY)
	if err != nil {
		testutils.FatalHere(t, "open %q failed: %s", name, err)
	}
	if _, err := f.Write(content); err != nil {
		testutils.FatalHere(t, "write %q failed: %s", name, err)
	}
	f.Close()
}

func readFile(t *testing.T, fs *FileSystem, name string) []byte {
	f, err := fs.Open(name, O_RDONLY)
	if err != nil {
		testutils.FatalHere(t, "open %q failed: %s", name, err)
	}
	defer f.Close()
	buf := make([]byte, f.Inode().Size())
	if len(buf) == 0 {
		return buf
	}
	if n, err := f.Read(buf); err != nil || n != len(buf) {
		testutils.FatalHere(t, "read %q: %d bytes, %v", name, n, err)
	}
	return buf
}

func TestLinkSharesInode(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	content := []byte("shared bytes")
	writeFile(t, fs, "orig", content)
	if err := fs.Link("orig", "alias"); err != nil {
		testutils.FatalHere(t, "link failed: %s", err)
	}

	root := fs.Root()
	orig, alias := root.Find("orig"), root.Find("alias")
	if orig == nil || alias == nil {
		testutils.FatalHere(t, "names missing after link")
	}
	if orig.InodeNumber() != alias.InodeNumber() {
		testutils.ErrorHere(t, "link got inode %d, original has %d", alias.InodeNumber(), orig.InodeNumber())
	}
	if got := fs.HardLinks(orig.InodeNumber()); got != 2 {
		testutils.ErrorHere(t, "link count %d, expected 2", got)
	}
	if got := readFile(t, fs, "alias"); !bytes.Equal(got, content) {
		testutils.ErrorHere(t, "content through alias: %q", got)
	}
}

// A write through one name is visible through every other.
func TestLinkSeesWrites(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "one", []byte("first"))
	if err := fs.Link("one", "two"); err != nil {
		testutils.FatalHere(t, "link failed: %s", err)
	}
	f, err := fs.Open("two", O_WRONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	if _, err := f.Write([]byte("SECOND")); err != nil {
		testutils.FatalHere(t, "write failed: %s", err)
	}
	f.Close()

	if got := readFile(t, fs, "one"); !bytes.Equal(got, []byte("SECOND")) {
		testutils.ErrorHere(t, "content through first name: %q", got)
	}
}

func TestLinkErrors(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "here", nil)
	if err := fs.Link("here", "here"); err != common.EINVAL {
		testutils.ErrorHere(t, "self link: got %v, expected EINVAL", err)
	}
	if err := fs.Link("absent", "alias"); err != common.ENOENT {
		testutils.ErrorHere(t, "link to a missing name: got %v, expected ENOENT", err)
	}
}

// Dropping one of several names leaves the data alone; dropping the
// last reclaims every block and the inode slot.
func TestUnlinkLastLinkReclaims(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()
	alloc := fs.DeviceInfo().AllocTbl

	freeData := alloc.FreeDataCount()
	freeInodes := alloc.FreeInodeCount()

	content := bytes.Repeat([]byte("0123456789abcdef"), 64) // 1024 bytes
	writeFile(t, fs, "orig", content)
	if err := fs.Link("orig", "alias"); err != nil {
		testutils.FatalHere(t, "link failed: %s", err)
	}
	inum := fs.Root().Find("orig").InodeNumber()

	if err := fs.Unlink("orig"); err != nil {
		testutils.FatalHere(t, "unlink failed: %s", err)
	}
	if got := fs.HardLinks(inum); got != 1 {
		testutils.ErrorHere(t, "link count %d after one unlink, expected 1", got)
	}
	if got := readFile(t, fs, "alias"); !bytes.Equal(got, content) {
		testutils.ErrorHere(t, "data lost while a name remained: %q", got)
	}

	if err := fs.Unlink("alias"); err != nil {
		testutils.FatalHere(t, "unlink failed: %s", err)
	}
	if got := fs.HardLinks(inum); got != 0 {
		testutils.ErrorHere(t, "link count %d after the last unlink", got)
	}
	// The directory itself grew by one block for its entries; that
	// block stays. Everything the file held is free again.
	if got := alloc.FreeDataCount(); got != freeData-1 {
		testutils.ErrorHere(t, "free data count %d, expected %d", got, freeData-1)
	}
	if got := alloc.FreeInodeCount(); got != freeInodes {
		testutils.ErrorHere(t, "free inode count %d, expected %d", got, freeInodes)
	}

	// The slot is genuinely reusable and the new file is empty.
	created, err := fs.Root().Create("fresh")
	if err != nil {
		testutils.FatalHere(t, "create failed: %s", err)
	}
	if created.InodeNumber() != inum {
		testutils.ErrorHere(t, "new file got inode %d, expected the reclaimed %d", created.InodeNumber(), inum)
	}
	if created.Size() != 0 {
		testutils.ErrorHere(t, "reclaimed inode came back with size %d", created.Size())
	}
}
