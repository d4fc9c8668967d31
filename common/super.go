package common

import "encoding/binary"

// SuperBlock is the first block of a formatted device. The six
// little-endian words are the compatibility-critical part of the
// layout; the volume id occupies otherwise unused bytes at offset 24
// and is all zero on images made by older tooling.
type SuperBlock struct {
	Magic             uint32
	TotalBlocks       uint32
	InodeBitmapBlocks uint32
	InodeAreaBlocks   uint32
	DataBitmapBlocks  uint32
	DataAreaBlocks    uint32
	VolumeID          [16]byte
}

func NewSuperBlock(info *DeviceInfo, volumeID [16]byte) *SuperBlock {
	return &SuperBlock{
		Magic:             SuperMagic,
		TotalBlocks:       uint32(info.TotalBlocks),
		InodeBitmapBlocks: uint32(info.InodeBitmapBlocks),
		InodeAreaBlocks:   uint32(info.InodeAreaBlocks),
		DataBitmapBlocks:  uint32(info.DataBitmapBlocks),
		DataAreaBlocks:    uint32(info.DataAreaBlocks),
		VolumeID:          volumeID,
	}
}

func (sb *SuperBlock) RecordLen() int { return 40 }

func (sb *SuperBlock) Decode(buf []byte) {
	sb.Magic = binary.LittleEndian.Uint32(buf[0:])
	sb.TotalBlocks = binary.LittleEndian.Uint32(buf[4:])
	sb.InodeBitmapBlocks = binary.LittleEndian.Uint32(buf[8:])
	sb.InodeAreaBlocks = binary.LittleEndian.Uint32(buf[12:])
	sb.DataBitmapBlocks = binary.LittleEndian.Uint32(buf[16:])
	sb.DataAreaBlocks = binary.LittleEndian.Uint32(buf[20:])
	copy(sb.VolumeID[:], buf[24:40])
}

func (sb *SuperBlock) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:], sb.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[8:], sb.InodeBitmapBlocks)
	binary.LittleEndian.PutUint32(buf[12:], sb.InodeAreaBlocks)
	binary.LittleEndian.PutUint32(buf[16:], sb.DataBitmapBlocks)
	binary.LittleEndian.PutUint32(buf[20:], sb.DataAreaBlocks)
	copy(buf[24:40], sb.VolumeID[:])
}

func (sb *SuperBlock) Valid() bool {
	return sb.Magic == SuperMagic
}

func (sb *SuperBlock) DeviceInfo() *DeviceInfo {
	return &DeviceInfo{
		TotalBlocks:       int(sb.TotalBlocks),
		InodeBitmapBlocks: int(sb.InodeBitmapBlocks),
		InodeAreaBlocks:   int(sb.InodeAreaBlocks),
		DataBitmapBlocks:  int(sb.DataBitmapBlocks),
		DataAreaBlocks:    int(sb.DataAreaBlocks),
	}
}

// GetDeviceInfo reads the superblock straight from the device (the
// cache is not up yet when this runs) and validates it.
func GetDeviceInfo(dev BlockDevice) (*DeviceInfo, *SuperBlock, error) {
	buf := make([]byte, BlockSize)
	if err := dev.Read(buf, 0); err != nil {
		return nil, nil, err
	}
	sb := new(SuperBlock)
	sb.Decode(buf)
	if !sb.Valid() {
		return nil, nil, EINVAL
	}
	return sb.DeviceInfo(), sb, nil
}
