// Package debug renders on-disk records for humans; the CLI's info
// command is its main client.
package debug

import (
	"bytes"
	"fmt"

	"github.com/teachos/easyfs/common"
)

func DumpSuperBlock(sb *common.SuperBlock) string {
	buf := bytes.NewBuffer(nil)
	fmt.Fprintf(buf, "magic:               %#x", sb.Magic)
	if !sb.Valid() {
		fmt.Fprintf(buf, " (INVALID)")
	}
	fmt.Fprintf(buf, "\n")
	fmt.Fprintf(buf, "total blocks:        %d\n", sb.TotalBlocks)
	fmt.Fprintf(buf, "inode bitmap blocks: %d\n", sb.InodeBitmapBlocks)
	fmt.Fprintf(buf, "inode area blocks:   %d\n", sb.InodeAreaBlocks)
	fmt.Fprintf(buf, "data bitmap blocks:  %d\n", sb.DataBitmapBlocks)
	fmt.Fprintf(buf, "data area blocks:    %d\n", sb.DataAreaBlocks)
	return buf.String()
}

func DumpDiskInode(inum int, di *common.DiskInode) string {
	buf := bytes.NewBuffer(nil)
	kind := "file"
	if di.IsDir() {
		kind = "directory"
	}
	fmt.Fprintf(buf, "inode %d: %s, %d bytes in %d data blocks\n",
		inum, kind, di.Size, di.DataBlocks())
	direct := di.DataBlocks()
	if direct > common.NumDirect {
		direct = common.NumDirect
	}
	fmt.Fprintf(buf, "  direct:    %v\n", di.Direct[:direct])
	fmt.Fprintf(buf, "  indirect1: %d\n", di.Indirect1)
	fmt.Fprintf(buf, "  indirect2: %d\n", di.Indirect2)
	return buf.String()
}

func DumpDirEntries(entries []*common.DirEntry) string {
	buf := bytes.NewBuffer(nil)
	for i, de := range entries {
		if de.IsEmpty() {
			fmt.Fprintf(buf, "entry %4d: (tombstone)\n", i)
			continue
		}
		fmt.Fprintf(buf, "entry %4d: %s\n", i, de)
	}
	return buf.String()
}
