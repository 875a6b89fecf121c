package main

import(
	"flag"
	"log"

	"github.com/astroshed/srcmask/pkg/srcmask"
)

var(
	fVerbosity int
	fWorkers int
	fImageName string
	fExtension int
	fExclusions string
	fOutput string
	fOverlay string
	fMarkers string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.IntVar(&fWorkers, "workers", 8, "goroutines used to score verdicts on big catalogs")

	flag.StringVar(&fImageName, "image", "", "image rootname, for exclusions-file lookup")
	flag.IntVar(&fExtension, "ext", 1, "detector extension (1 or 2), for exclusions-file lookup")
	flag.StringVar(&fExclusions, "exclusions", "", "exclusions file mapping images to region files")

	flag.StringVar(&fOutput, "o", "filtered.coo", "name of output catalog file")
	flag.StringVar(&fOverlay, "overlay", "", "write a diagnostic overlay PNG here")
	flag.StringVar(&fMarkers, "markers", "flux", "how to mark kept sources on the overlay: flux, rings, plain")
	flag.Parse()

	log.Printf("srcmask starting\n")
}

func main() {
	m := srcmask.NewMasker()
	if err := m.LoadFilesAndDirs(flag.Args()...); err != nil {
		log.Fatal(err)
	}

	// Override the config file with command line args, if relevant
	if fOutput != "" { m.Config.OutputFilename = fOutput }
	if fOverlay != "" { m.Config.OverlayFilename = fOverlay }
	if fMarkers != "" { m.Config.MarkerStrategy = fMarkers }
	if fImageName != "" { m.Config.ImageName = fImageName }
	if fExclusions != "" { m.Config.ExclusionsFilename = fExclusions }

	m.Config.Verbosity = fVerbosity
	m.Config.Workers = fWorkers
	m.Config.Extension = fExtension

	if err := m.LoadConfigured(); err != nil {
		log.Fatal(err)
	}
	if err := m.ResolveExclusions(); err != nil {
		log.Fatal(err)
	}

	if m.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", m.Config.AsYaml())
		log.Printf("%s", m)
	}

	if err := m.Run(); err != nil {
		log.Fatal(err)
	}

	m.Report()

	if err := m.WriteOutputs(); err != nil {
		log.Fatal(err)
	}
}
