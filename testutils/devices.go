package testutils

import (
	"testing"

	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/device"
)

// NewTestDevice builds a ramdisk with the given number of blocks.
// Each block is filled with the low byte of its block number, so tests
// can tell blocks apart without formatting.
func NewTestDevice(test *testing.T, blocks int) common.BlockDevice {
	data := make([]byte, blocks*common.BlockSize)
	for i := 0; i < blocks; i++ {
		for j := 0; j < common.BlockSize; j++ {
			data[(i*common.BlockSize)+j] = byte(i)
		}
	}
	dev, err := device.NewRamdiskDevice(data)
	if err != nil {
		FatalHere(test, "Failed when creating ramdisk device: %s", err)
	}
	return dev
}

// NewZeroDevice builds a zero-filled ramdisk, ready for formatting.
func NewZeroDevice(test *testing.T, blocks int) common.BlockDevice {
	dev, err := device.NewRamdiskDevice(make([]byte, blocks*common.BlockSize))
	if err != nil {
		FatalHere(test, "Failed when creating ramdisk device: %s", err)
	}
	return dev
}
