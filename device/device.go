// Package device provides BlockDevice implementations: an in-memory
// ramdisk and a file-backed device. Both serialize their operations
// through a single goroutine loop, so a device is safe to share
// between the cache and any direct superblock reads.
package device

import "errors"

var (
	ERR_SEEK    = errors.New("could not seek to given position")
	ERR_BADCALL = errors.New("bad call")
	ERR_ALIGN   = errors.New("unaligned block access")
)

type CallNumber int

const (
	DEV_READ CallNumber = iota
	DEV_WRITE
	DEV_CLOSE
)

type m_dev_req struct {
	call CallNumber
	buf  []byte
	pos  int64
}

type m_dev_res struct {
	err error
}
