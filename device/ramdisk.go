package device

import (
	"github.com/teachos/easyfs/common"
)

type ramdiskDevice struct {
	data []byte
	in   chan m_dev_req
	out  chan m_dev_res
}

// NewRamdiskDevice creates a block device backed by the given byte
// slice, which must be a whole number of blocks.
func NewRamdiskDevice(data []byte) (common.BlockDevice, error) {
	if len(data)%common.BlockSize != 0 {
		return nil, ERR_ALIGN
	}

	dev := &ramdiskDevice{
		data,
		make(chan m_dev_req),
		make(chan m_dev_res),
	}

	go dev.loop()
	return dev, nil
}

func (dev *ramdiskDevice) loop() {
	var in <-chan m_dev_req = dev.in
	var out chan<- m_dev_res = dev.out

	for req := range in {
		if req.call != DEV_CLOSE && badTransfer(req.buf, req.pos, len(dev.data)) {
			out <- m_dev_res{ERR_BADCALL}
			continue
		}
		switch req.call {
		case DEV_READ:
			copy(req.buf, dev.data[req.pos:req.pos+common.BlockSize])
			out <- m_dev_res{nil}
		case DEV_WRITE:
			copy(dev.data[req.pos:req.pos+common.BlockSize], req.buf)
			out <- m_dev_res{nil}
		case DEV_CLOSE:
			out <- m_dev_res{nil}
			close(dev.in)
			close(dev.out)
			return
		default:
			out <- m_dev_res{ERR_BADCALL}
		}
	}
}

// One whole block, block aligned, inside the device.
func badTransfer(buf []byte, pos int64, size int) bool {
	return len(buf) != common.BlockSize ||
		pos%common.BlockSize != 0 ||
		pos < 0 || pos+common.BlockSize > int64(size)
}

func (dev *ramdiskDevice) Read(buf []byte, pos int64) error {
	dev.in <- m_dev_req{DEV_READ, buf, pos}
	res := <-dev.out
	return res.err
}

func (dev *ramdiskDevice) Write(buf []byte, pos int64) error {
	dev.in <- m_dev_req{DEV_WRITE, buf, pos}
	res := <-dev.out
	return res.err
}

func (dev *ramdiskDevice) Close() error {
	dev.in <- m_dev_req{DEV_CLOSE, nil, 0}
	res := <-dev.out
	return res.err
}
