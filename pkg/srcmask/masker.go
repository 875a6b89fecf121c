package srcmask

import (
	"fmt"
	"image"
	"log"

	"github.com/astroshed/srcmask/pkg/catalog"
	"github.com/astroshed/srcmask/pkg/regions"
)

// Catalogs smaller than this are filtered on one goroutine; the pool
// isn't worth spinning up for a few hundred sources.
const concurrencyThreshold = 2048

// A Masker holds one filtering pass: the catalog, the ordered region
// list, and the results. Build it from files with LoadFilesAndDirs,
// then Run / Report / WriteOutputs.
type Masker struct {
	Config

	Catalog       catalog.Catalog
	Regions       []regions.Region
	SkippedShapes int         // unsupported shapes dropped during region parsing
	BaseImage     image.Image // optional backdrop for the overlay

	Kept          []catalog.Source
	Dropped       []catalog.Source
}

func NewMasker() Masker {
	return Masker{
		Config:  NewConfig(),
		Regions: []regions.Region{},
	}
}

func (m Masker)String() string {
	str := fmt.Sprintf("Masker[%s, baseline %s\n", m.Catalog, regions.DefaultMembership(m.Regions))
	for _, r := range m.Regions {
		str += fmt.Sprintf("  %s\n", r)
	}
	return str + "]\n"
}

// AddRegions appends a parsed region list, renumbering so order keeps
// ascending across multiple files - a region in a second file applies
// after (and can override) everything in the first.
func (m *Masker)AddRegions(regs []regions.Region, skipped int) {
	base := len(m.Regions)
	for _, r := range regs {
		r.OrderIndex += base
		m.Regions = append(m.Regions, r)
	}
	m.SkippedShapes += skipped
}

// ResolveExclusions consults the exclusions mapping for this image and
// extension, and loads whatever region file it names. No entry, or a
// 'None' placeholder, just means no regions from the mapping.
func (m *Masker)ResolveExclusions() error {
	if m.ExclusionsFilename == "" {
		return nil
	}
	if m.ImageName == "" {
		return fmt.Errorf("exclusions file given but no image name to look up")
	}

	excl, err := LoadExclusions(m.ExclusionsFilename)
	if err != nil {
		return err
	}

	regFile := excl.RegionFileFor(m.ImageName, m.Extension)
	if regFile == "" {
		log.Printf("No regions mapped for %s[sci,%d]; catalog passes through\n", m.ImageName, m.Extension)
		return nil
	}

	regs, skipped, err := regions.ParseFile(regFile)
	if err != nil {
		return err
	}
	m.AddRegions(regs, skipped)
	log.Printf("Loaded %d regions for %s[sci,%d] from %s\n", len(regs), m.ImageName, m.Extension, regFile)

	return nil
}

// Run scores every source against the region list and splits the
// catalog into kept and dropped. Big catalogs get the worker pool.
func (m *Masker)Run() error {
	srcs := m.Catalog.Sources

	var err error
	if m.Workers > 1 && len(srcs) >= concurrencyThreshold {
		m.Kept, err = regions.FilterConcurrently(srcs, m.Regions, m.Workers)
	} else {
		m.Kept, err = regions.Filter(srcs, m.Regions)
	}
	if err != nil {
		return err
	}

	// Kept preserves catalog order, so the complement falls out of a
	// single merge-style walk.
	m.Dropped = make([]catalog.Source, 0, len(srcs)-len(m.Kept))
	k := 0
	for _, s := range srcs {
		if k < len(m.Kept) && m.Kept[k] == s {
			k++
		} else {
			m.Dropped = append(m.Dropped, s)
		}
	}

	return nil
}

// Report logs what the pass did. At higher verbosity it also dumps the
// flux distribution of the kept sources.
func (m *Masker)Report() {
	log.Printf("Filtered %s: %d regions (%d unsupported shapes skipped), kept %d / dropped %d\n",
		m.Catalog, len(m.Regions), m.SkippedShapes, len(m.Kept), len(m.Dropped))

	if m.Verbosity > 0 {
		kept := catalog.Catalog{Sources: m.Kept}
		log.Printf("Input  %s\n", m.Catalog.FluxStats())
		log.Printf("Kept   %s\n", kept.FluxStats())
	}
	if m.Verbosity > 1 {
		kept := catalog.Catalog{Sources: m.Kept}
		log.Printf("Kept flux histogram (log2 half-stops):\n%s\n", kept.FluxHistogram())
	}
}

// WriteOutputs writes the filtered catalog, and the overlay PNG if one
// was asked for.
func (m *Masker)WriteOutputs() error {
	kept := catalog.Catalog{Sources: m.Kept}
	if err := kept.WriteFile(m.OutputFilename); err != nil {
		return err
	}
	log.Printf("Filtered catalog written '%s'\n", m.OutputFilename)

	if m.OverlayFilename != "" {
		img := RenderOverlay(m)
		if err := WritePNG(img, m.OverlayFilename); err != nil {
			return err
		}
		log.Printf("Overlay written '%s'\n", m.OverlayFilename)
	}

	return nil
}
