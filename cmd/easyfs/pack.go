package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"

	"github.com/teachos/easyfs/fs"
)

// Manifest describes an image to build: its geometry plus the host
// files to copy in. Entries with no Name use the source's base name.
type Manifest struct {
	Blocks            int `yaml:"blocks"`
	InodeBitmapBlocks int `yaml:"inode_bitmap_blocks"`
	Files             []ManifestFile
}

type ManifestFile struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

func loadManifest(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %s", filename, err)
	}
	if m.Blocks == 0 {
		m.Blocks = 4096
	}
	if m.InodeBitmapBlocks == 0 {
		m.InodeBitmapBlocks = 1
	}
	return &m, nil
}

func packCommand() *cli.Command {
	return &cli.Command{
		Name:  "pack",
		Usage: "format an image and fill it from a manifest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "manifest",
				Aliases: []string{"m"},
				Value:   "easyfs.yaml",
				Usage:   "manifest describing geometry and files",
			},
		},
		Action: func(c *cli.Context) error {
			m, err := loadManifest(c.String("manifest"))
			if err != nil {
				return err
			}
			return packImage(c.String("image"), m)
		},
	}
}

func packImage(image string, m *Manifest) error {
	if err := mkfsImage(image, m.Blocks, m.InodeBitmapBlocks); err != nil {
		return err
	}
	efs, err := fs.OpenFileSystemFile(image)
	if err != nil {
		return err
	}
	defer efs.Shutdown()

	for _, mf := range m.Files {
		name := mf.Name
		if name == "" {
			name = filepath.Base(mf.Source)
		}
		data, err := os.ReadFile(mf.Source)
		if err != nil {
			return err
		}
		f, err := efs.Open(name, fs.O_CREATE|fs.O_WRONLY)
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logrus.WithField("name", name).
			WithField("bytes", len(data)).
			Debug("packed file")
	}
	return nil
}
