package srcmask

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// An Exclusions file associates each image with up to two region
// files, one per detector extension:
//
//   # image               sci,1 regions   sci,2 regions
//   j8bt06nyq_flt.fits    mask_ext1.reg   None
//   j8bt06nzq_flt.fits    None            mask_ext2.reg
//
// 'None' means "no regions for that extension" - the catalog for that
// chip passes through the filter untouched. Region paths are taken
// relative to the exclusions file itself.
type Exclusions struct {
	LoadFilename string
	ByImage      map[string][2]string
}

const noRegionToken = "none"

func LoadExclusions(filename string) (Exclusions, error) {
	e := Exclusions{
		LoadFilename: filename,
		ByImage:      map[string][2]string{},
	}

	f, err := os.Open(filename)
	if err != nil {
		return e, fmt.Errorf("exclusions open+r '%s': %v", filename, err)
	}
	defer f.Close()

	dir := filepath.Dir(filename)
	scanner := bufio.NewScanner(f)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		entry := [2]string{}
		for i := 0; i < 2 && i+1 < len(fields); i++ {
			if strings.ToLower(fields[i+1]) == noRegionToken {
				continue
			}
			path := fields[i+1]
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			entry[i] = path
		}

		if _, exists := e.ByImage[fields[0]]; exists {
			return e, fmt.Errorf("exclusions parse '%s' line %d: duplicate image '%s'", filename, line, fields[0])
		}
		e.ByImage[fields[0]] = entry
	}

	return e, scanner.Err()
}

// RegionFileFor returns the region file to apply to (image, ext), or
// "" for pass-through. Lookup tries the name as given, then its
// basename, since catalogs tend to carry full paths while exclusions
// files list bare rootnames. ext is 1-based.
func (e Exclusions)RegionFileFor(image string, ext int) string {
	if ext < 1 || ext > 2 {
		return ""
	}

	if entry, exists := e.ByImage[image]; exists {
		return entry[ext-1]
	}
	if entry, exists := e.ByImage[filepath.Base(image)]; exists {
		return entry[ext-1]
	}
	return ""
}
