package common

import "errors"

// Logical failures are reported through these error values and leave no
// state mutated. Corruption (a record crossing a block boundary, a
// directory whose size is not a multiple of the entry width, a null
// block pointer where data is expected) is not an error value here; it
// panics, since there is no repair path.

var (
	EBADF   = errors.New("Bad file number")
	EBUSY   = errors.New("Resource busy")
	EEXIST  = errors.New("File exists")
	EFBIG   = errors.New("File too large")
	EINVAL  = errors.New("Invalid argument")
	EISDIR  = errors.New("Is a directory")
	ENFILE  = errors.New("File table overflow")
	ENOENT  = errors.New("No such file or directory")
	ENOSPC  = errors.New("No space left on device")
	ENOTDIR = errors.New("Not a directory")
)
