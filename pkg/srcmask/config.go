package srcmask

import(
	"log"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

verbosity: 1
workers: 8

imagename: j8bt06nyq_flt.fits
extension: 1

catalogfilename: j8bt06nyq_flt_sci1.coo
exclusionsfilename: exclusions.txt

outputfilename: filtered.coo
overlayfilename: overlay.png
overlaybasefilename: preview.tif
markerstrategy: flux

*/

type Config struct {
	Verbosity           int
	Workers             int    // goroutines used to score verdicts on big catalogs

	// Which image/extension this pass is for; used to look up the
	// exclusions mapping when region files aren't given directly.
	ImageName           string
	Extension           int    // 1-based detector extension (sci,1 / sci,2)

	CatalogFilename     string
	RegionFilenames     []string
	ExclusionsFilename  string

	OutputFilename      string
	OverlayFilename     string
	OverlayBaseFilename string
	MarkerStrategy      string
}

func NewConfig() Config {
	return Config{
		Workers:        8,
		Extension:      1,
		OutputFilename: "filtered.coo",
		MarkerStrategy: "flux",
	}
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

func (c Config)GetMarker() MarkerFunc {
	switch c.MarkerStrategy {
	case "flux":  return MarkByFluxRamp
	case "rings": return MarkByFluxRings
	case "plain": return MarkByPlainDot
	case "":      return MarkByPlainDot
	default:
		log.Fatalf("no MarkerStrategy named '%s'", c.MarkerStrategy)
		return nil
	}
}
