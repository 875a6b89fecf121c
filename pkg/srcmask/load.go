package srcmask

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/astroshed/srcmask/pkg/catalog"
	"github.com/astroshed/srcmask/pkg/regions"
)

// LoadFilesAndDirs takes the command line args - any mix of config
// files, catalogs, region files, overlay backdrops, or directories of
// those - and loads each by extension.
func (m *Masker)LoadFilesAndDirs(args ...string) error {
	for _, arg := range args {
		item, err := os.Stat(arg)

		switch {

		case err != nil:
			return fmt.Errorf("load %s: %v", arg, err)

		case item.IsDir():
			// Is a dir, recurse into contents
			contents, err := os.ReadDir(arg)
			if err != nil {
				return fmt.Errorf("readdir %s: %v", arg, err)
			}
			for _, content := range contents {
				if err := m.LoadFilesAndDirs(filepath.Join(arg, content.Name())); err != nil {
					return fmt.Errorf("load %s: %v", arg, err)
				}
			}

		default: // is a file, load it
			if err := m.loadFile(arg); err != nil {
				return fmt.Errorf("loadfile %s: %v", arg, err)
			}
		}
	}

	return nil
}

func (m *Masker)loadFile(filename string) error {
	ext := filepath.Ext(filename)

	switch strings.ToLower(ext) {

	case ".yaml":
		cfg, err := loadConfig(filename)
		if err != nil {
			return fmt.Errorf("Loading %s as config YAML failed: %v", filename, err)
		}
		m.Config = cfg
		log.Printf("Loaded base configuration from %s\n", filename)

	case ".coo", ".cat", ".txt":
		cat, err := catalog.LoadFile(filename)
		if err != nil {
			return err
		}
		m.Catalog = cat
		log.Printf("Loaded %d sources from %s\n", len(cat.Sources), filename)

	case ".reg":
		regs, skipped, err := regions.ParseFile(filename)
		if err != nil {
			return err
		}
		m.AddRegions(regs, skipped)
		log.Printf("Loaded %d regions from %s (%d unsupported shapes skipped)\n", len(regs), filename, skipped)

	case ".tif", ".tiff", ".png":
		img, err := loadImage(filename)
		if err != nil {
			return err
		}
		m.BaseImage = img
		log.Printf("Loaded overlay backdrop %s\n", filename)
	}

	return nil
}

// LoadConfigured pulls in whatever the config file names that hasn't
// already been loaded from the command line.
func (m *Masker)LoadConfigured() error {
	if len(m.Catalog.Sources) == 0 && m.CatalogFilename != "" {
		if err := m.loadFile(m.CatalogFilename); err != nil {
			return err
		}
	}
	for _, rf := range m.RegionFilenames {
		if err := m.loadFile(rf); err != nil {
			return err
		}
	}
	if m.BaseImage == nil && m.OverlayBaseFilename != "" {
		if err := m.loadFile(m.OverlayBaseFilename); err != nil {
			return err
		}
	}
	return nil
}

func loadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %v", filename, err)
	}

	return newConfigFromYaml(contents)
}

func loadImage(filename string) (image.Image, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r img '%s': %v", filename, err)
	}
	defer reader.Close()

	if strings.ToLower(filepath.Ext(filename)) == ".png" {
		img, err := png.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("png loading '%s': %v", filename, err)
		}
		return img, nil
	}

	img, err := tiff.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("tiff loading '%s': %v", filename, err)
	}
	return img, nil
}
