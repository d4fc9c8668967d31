// Command easyfs creates and manipulates easyfs image files from the
// host side: format, pack host files in, list, read and write content,
// make and remove hard links, and dump image metadata.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/teachos/easyfs/common"
	"github.com/teachos/easyfs/debug"
	"github.com/teachos/easyfs/device"
	"github.com/teachos/easyfs/fs"
)

// Config carries the environment defaults; flags override them.
type Config struct {
	Image    string `envconfig:"EASYFS_IMAGE" default:"easyfs.img"`
	LogLevel string `envconfig:"EASYFS_LOG_LEVEL" default:"info"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("easyfs", &cfg); err != nil {
		logrus.Fatalf("reading environment config: %s", err)
	}

	app := &cli.App{
		Name:  "easyfs",
		Usage: "create and manipulate easyfs images",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "image",
				Aliases: []string{"i"},
				Value:   cfg.Image,
				Usage:   "path to the image file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: cfg.LogLevel,
				Usage: "logrus level (debug, info, warn, error)",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			mkfsCommand(),
			packCommand(),
			lsCommand(),
			catCommand(),
			writeCommand(),
			lnCommand(),
			rmCommand(),
			statCommand(),
			infoCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func openImage(c *cli.Context) (*fs.FileSystem, error) {
	return fs.OpenFileSystemFile(c.String("image"))
}

func mkfsCommand() *cli.Command {
	return &cli.Command{
		Name:  "mkfs",
		Usage: "format a fresh image",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "blocks", Value: 4096, Usage: "total blocks in the image"},
			&cli.IntFlag{Name: "inode-bitmap-blocks", Value: 1, Usage: "blocks of inode bitmap (4096 inodes each)"},
		},
		Action: func(c *cli.Context) error {
			return mkfsImage(c.String("image"), c.Int("blocks"), c.Int("inode-bitmap-blocks"))
		},
	}
}

func mkfsImage(image string, blocks, inodeBitmapBlocks int) error {
	dev, err := device.CreateFileDevice(image, blocks)
	if err != nil {
		return err
	}
	volume := uuid.New()
	efs, err := fs.Mkfs(dev, blocks, inodeBitmapBlocks, volume)
	if err != nil {
		dev.Close()
		return err
	}
	logrus.WithField("image", image).
		WithField("volume", volume.String()).
		Info("image formatted")
	return efs.Shutdown()
}

func lsCommand() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "list the root directory",
		Action: func(c *cli.Context) error {
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()

			dircolor := color.New(color.FgBlue, color.Bold)
			for _, name := range efs.List() {
				f, err := efs.Open(name, fs.O_RDONLY)
				if err != nil {
					return err
				}
				st, err := efs.Stat(f)
				if err != nil {
					return err
				}
				size := f.Inode().Size()
				f.Close()
				if st.Mode == common.ModeDir {
					fmt.Printf("%8d %3d %s\n", size, st.Nlink, dircolor.Sprint(name))
				} else {
					fmt.Printf("%8d %3d %s\n", size, st.Nlink, name)
				}
			}
			return nil
		},
	}
}

func catCommand() *cli.Command {
	return &cli.Command{
		Name:      "cat",
		Usage:     "print a file's content",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: cat NAME")
			}
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()

			f, err := efs.Open(c.Args().Get(0), fs.O_RDONLY)
			if err != nil {
				return err
			}
			defer f.Close()

			buf := make([]byte, common.BlockSize)
			for {
				n, err := f.Read(buf)
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				if _, err := os.Stdout.Write(buf[:n]); err != nil {
					return err
				}
			}
		},
	}
}

func writeCommand() *cli.Command {
	return &cli.Command{
		Name:      "write",
		Usage:     "copy a host file into the image",
		ArgsUsage: "NAME HOSTFILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: write NAME HOSTFILE")
			}
			data, err := os.ReadFile(c.Args().Get(1))
			if err != nil {
				return err
			}
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()

			f, err := efs.Open(c.Args().Get(0), fs.O_CREATE|fs.O_WRONLY)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = f.Write(data)
			return err
		},
	}
}

func lnCommand() *cli.Command {
	return &cli.Command{
		Name:      "ln",
		Usage:     "create a hard link",
		ArgsUsage: "OLD NEW",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("usage: ln OLD NEW")
			}
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()
			return efs.Link(c.Args().Get(0), c.Args().Get(1))
		},
	}
}

func rmCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "remove a name (unlink)",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: rm NAME")
			}
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()
			return efs.Unlink(c.Args().Get(0))
		},
	}
}

func statCommand() *cli.Command {
	return &cli.Command{
		Name:      "stat",
		Usage:     "show inode number, link count and mode",
		ArgsUsage: "NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: stat NAME")
			}
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()

			f, err := efs.Open(c.Args().Get(0), fs.O_RDONLY)
			if err != nil {
				return err
			}
			defer f.Close()
			st, err := efs.Stat(f)
			if err != nil {
				return err
			}
			fmt.Printf("ino: %d\nnlink: %d\nmode: %s\nsize: %d\n",
				st.Ino, st.Nlink, st.Mode, f.Inode().Size())
			return nil
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "dump superblock and free-space counters",
		Action: func(c *cli.Context) error {
			efs, err := openImage(c)
			if err != nil {
				return err
			}
			defer efs.Shutdown()

			sb := efs.SuperBlock()
			fmt.Print(debug.DumpSuperBlock(sb))
			fmt.Printf("volume id:           %s\n", uuid.UUID(sb.VolumeID).String())
			alloc := efs.DeviceInfo().AllocTbl
			fmt.Printf("free inodes:         %d\n", alloc.FreeInodeCount())
			fmt.Printf("free data blocks:    %d\n", alloc.FreeDataCount())

			root := efs.Root()
			fmt.Print(debug.DumpDiskInode(root.InodeNumber(), root.DiskInode()))
			fmt.Print(debug.DumpDirEntries(root.Entries()))
			return nil
		},
	}
}
