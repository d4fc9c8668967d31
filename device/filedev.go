package device

import (
	"os"

	"github.com/teachos/easyfs/common"
)

type fileDevice struct {
	file     *os.File
	filename string
	in       chan m_dev_req
	out      chan m_dev_res
}

// NewFileDevice opens an existing image file as a block device.
func NewFileDevice(filename string) (common.BlockDevice, error) {
	file, err := os.OpenFile(filename, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	return newFileDevice(file, filename), nil
}

// CreateFileDevice creates (or truncates) an image file spanning the
// given number of blocks and opens it as a block device.
func CreateFileDevice(filename string, blocks int) (common.BlockDevice, error) {
	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	if err := file.Truncate(int64(blocks) * common.BlockSize); err != nil {
		file.Close()
		return nil, err
	}
	return newFileDevice(file, filename), nil
}

func newFileDevice(file *os.File, filename string) common.BlockDevice {
	dev := &fileDevice{
		file,
		filename,
		make(chan m_dev_req),
		make(chan m_dev_res),
	}

	go dev.loop()
	return dev
}

func (dev *fileDevice) loop() {
	var in <-chan m_dev_req = dev.in
	var out chan<- m_dev_res = dev.out

	for req := range in {
		switch req.call {
		case DEV_READ:
			if len(req.buf) != common.BlockSize || req.pos%common.BlockSize != 0 {
				out <- m_dev_res{ERR_BADCALL}
				continue
			}
			_, err := dev.file.ReadAt(req.buf, req.pos)
			out <- m_dev_res{err}
		case DEV_WRITE:
			if len(req.buf) != common.BlockSize || req.pos%common.BlockSize != 0 {
				out <- m_dev_res{ERR_BADCALL}
				continue
			}
			_, err := dev.file.WriteAt(req.buf, req.pos)
			out <- m_dev_res{err}
		case DEV_CLOSE:
			err := dev.file.Close()
			out <- m_dev_res{err}
			close(dev.in)
			close(dev.out)
			return
		default:
			out <- m_dev_res{ERR_BADCALL}
		}
	}
}

func (dev *fileDevice) Read(buf []byte, pos int64) error {
	dev.in <- m_dev_req{DEV_READ, buf, pos}
	res := <-dev.out
	return res.err
}

func (dev *fileDevice) Write(buf []byte, pos int64) error {
	dev.in <- m_dev_req{DEV_WRITE, buf, pos}
	res := <-dev.out
	return res.err
}

func (dev *fileDevice) Close() error {
	dev.in <- m_dev_req{DEV_CLOSE, nil, 0}
	res := <-dev.out
	return res.err
}
