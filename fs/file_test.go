package fs

import (
	"bytes"
	"io"
	"testing"

	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/testutils"
)

func TestOpenMissing(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	if _, err := fs.Open("absent", O_RDONLY); err != common.ENOENT {
		testutils.ErrorHere(t, "open of a missing name: got %v, expected ENOENT", err)
	}
	f, err := fs.Open("absent", O_CREATE|O_RDWR)
	if err != nil {
		testutils.FatalHere(t, "create-open failed: %s", err)
	}
	defer f.Close()
	if f.Inode().Size() != 0 {
		testutils.ErrorHere(t, "created file has size %d", f.Inode().Size())
	}
}

// An existing file opened with O_CREATE starts empty again.
func TestOpenCreateTruncates(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("old content"))
	f, err := fs.Open("f", O_CREATE|O_WRONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	if f.Inode().Size() != 0 {
		testutils.ErrorHere(t, "O_CREATE left size %d", f.Inode().Size())
	}
	f.Close()
}

func TestOpenTrunc(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("old content"))
	f, err := fs.Open("f", O_RDWR|O_TRUNC)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer f.Close()
	if f.Inode().Size() != 0 {
		testutils.ErrorHere(t, "O_TRUNC left size %d", f.Inode().Size())
	}
}

func TestAccessModes(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("content"))

	ro, err := fs.Open("f", O_RDONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer ro.Close()
	if _, err := ro.Write([]byte("x")); err != common.EBADF {
		testutils.ErrorHere(t, "write on a read-only handle: got %v, expected EBADF", err)
	}

	wo, err := fs.Open("f", O_WRONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer wo.Close()
	if _, err := wo.Read(make([]byte, 1)); err != common.EBADF {
		testutils.ErrorHere(t, "read on a write-only handle: got %v, expected EBADF", err)
	}
}

// The position advances with reads and writes and seeks move it.
func TestSeek(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("0123456789"))
	f, err := fs.Open("f", O_RDWR)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer f.Close()

	if pos, err := f.Seek(4, SEEK_SET); err != nil || pos != 4 {
		testutils.FatalHere(t, "seek set: %d, %v", pos, err)
	}
	buf := make([]byte, 3)
	if _, err := f.Read(buf); err != nil || !bytes.Equal(buf, []byte("456")) {
		testutils.ErrorHere(t, "read after seek: %q, %v", buf, err)
	}
	if pos, err := f.Seek(-2, SEEK_CUR); err != nil || pos != 5 {
		testutils.ErrorHere(t, "seek cur: %d, %v", pos, err)
	}
	if pos, err := f.Seek(-1, SEEK_END); err != nil || pos != 9 {
		testutils.ErrorHere(t, "seek end: %d, %v", pos, err)
	}
	if _, err := f.Read(buf[:1]); err != nil || buf[0] != '9' {
		testutils.ErrorHere(t, "read at the end: %q, %v", buf[:1], err)
	}
	if _, err := f.Seek(-1, SEEK_SET); err != common.EINVAL {
		testutils.ErrorHere(t, "negative seek: got %v, expected EINVAL", err)
	}
	if _, err := f.Seek(0, 9); err != common.EINVAL {
		testutils.ErrorHere(t, "bad whence: got %v, expected EINVAL", err)
	}
}

func TestReadEOF(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("abc"))
	f, err := fs.Open("f", O_RDONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer f.Close()

	buf := make([]byte, 10)
	n, err := f.Read(buf)
	if n != 3 || err != nil {
		testutils.FatalHere(t, "short read: %d, %v", n, err)
	}
	if _, err := f.Read(buf); err != io.EOF {
		testutils.ErrorHere(t, "read at the end: got %v, expected EOF", err)
	}
}

func TestClosedHandle(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("abc"))
	f, err := fs.Open("f", O_RDWR)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	if err := f.Close(); err != nil {
		testutils.FatalHere(t, "close failed: %s", err)
	}
	if err := f.Close(); err != common.EBADF {
		testutils.ErrorHere(t, "double close: got %v, expected EBADF", err)
	}
	if _, err := f.Read(make([]byte, 1)); err != common.EBADF {
		testutils.ErrorHere(t, "read after close: got %v, expected EBADF", err)
	}
	if _, err := f.Seek(0, SEEK_SET); err != common.EBADF {
		testutils.ErrorHere(t, "seek after close: got %v, expected EBADF", err)
	}
	if _, err := fs.Stat(f); err != common.EBADF {
		testutils.ErrorHere(t, "stat after close: got %v, expected EBADF", err)
	}
}

func TestStat(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("abc"))
	if err := fs.Link("f", "g"); err != nil {
		testutils.FatalHere(t, "link failed: %s", err)
	}
	f, err := fs.Open("f", O_RDONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer f.Close()

	st, err := fs.Stat(f)
	if err != nil {
		testutils.FatalHere(t, "stat failed: %s", err)
	}
	if st.Ino != f.Inode().InodeNumber() {
		testutils.ErrorHere(t, "stat ino %d, expected %d", st.Ino, f.Inode().InodeNumber())
	}
	if st.Nlink != 2 {
		testutils.ErrorHere(t, "stat nlink %d, expected 2", st.Nlink)
	}
	if st.Mode != common.ModeFile {
		testutils.ErrorHere(t, "stat mode %s", st.Mode)
	}
}

func TestTruncateOp(t *testing.T) {
	fs, _ := newTestFS(t)
	defer fs.Shutdown()

	writeFile(t, fs, "f", []byte("content"))

	ro, err := fs.Open("f", O_RDONLY)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	if err := fs.Truncate(ro); err != common.EBADF {
		testutils.ErrorHere(t, "truncate of a read-only handle: got %v, expected EBADF", err)
	}
	ro.Close()

	rw, err := fs.Open("f", O_RDWR)
	if err != nil {
		testutils.FatalHere(t, "open failed: %s", err)
	}
	defer rw.Close()
	if err := fs.Truncate(rw); err != nil {
		testutils.FatalHere(t, "truncate failed: %s", err)
	}
	if rw.Inode().Size() != 0 {
		testutils.ErrorHere(t, "size %d after truncate", rw.Inode().Size())
	}
}
