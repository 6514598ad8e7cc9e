package main

import(
	"flag"
	"log"

	"github.com/abellard/rawtone/pkg/develop"
	"github.com/abellard/rawtone/pkg/grade"
	"github.com/abellard/rawtone/pkg/session"
)

var(
	fVerbosity int
	fQuality string
	fParamsFile string
	fOutputFilename string
	fHDRFilename string
	fHistogramFilename string
	fAutoLevels bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fQuality, "quality", "full", "demosaic quality: preview or full")
	flag.StringVar(&fParamsFile, "params", "", "grading parameters YAML (default: all neutral)")
	flag.StringVar(&fOutputFilename, "o", "out.png", "name of graded output image (.png or .tif)")
	flag.StringVar(&fHDRFilename, "hdr", "", "also write the pre-grade linear buffer as a Radiance .hdr")
	flag.StringVar(&fHistogramFilename, "histogram", "", "also write a histogram chart PNG of the graded output")
	flag.BoolVar(&fAutoLevels, "autolevels", false, "derive blacks/whites from the buffer's luminance percentiles")
	flag.Parse()

	log.Printf("rawtone starting\n")
}

func main() {
	if flag.NArg() != 1 {
		log.Fatal("usage: rawtone [flags] <sensordump.tif>")
	}
	rawPath := flag.Arg(0)

	quality := develop.Full
	if fQuality == "preview" {
		quality = develop.Preview
	}

	params := grade.Neutral()
	if fParamsFile != "" {
		var err error
		if params, err = grade.LoadParams(fParamsFile); err != nil {
			log.Fatal(err)
		}
	}

	s := session.Session{}
	buf, err := s.Load(rawPath, quality)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Decoded %s -> %s", rawPath, buf)

	if fAutoLevels {
		auto := session.AutoLevels(buf)
		params.Blacks = auto.Blacks
		params.Whites = auto.Whites
		log.Printf("Auto levels: blacks=%.4f whites=%.4f", params.Blacks, params.Whites)
	}

	if fVerbosity > 0 {
		str, _ := params.AsYaml()
		log.Printf("Grading parameters:-\n\n%s\n", str)
		st := buf.Stats()
		log.Printf("Luma stats: mean=%.4f p01=%.4f p99=%.4f", st.MeanLuma, st.P01, st.P99)
	}

	if fHDRFilename != "" {
		if err := buf.WriteToHDR(fHDRFilename); err != nil {
			log.Fatal(err)
		}
		log.Printf("Linear HDR written '%s'", fHDRFilename)
	}

	if err := session.WriteImage(session.Render(buf, params), fOutputFilename); err != nil {
		log.Fatal(err)
	}
	log.Printf("Graded output written '%s'", fOutputFilename)

	if fHistogramFilename != "" {
		hist := session.BuildHistogram(buf, params)
		if err := hist.WriteToPNG(fHistogramFilename); err != nil {
			log.Fatal(err)
		}
		log.Printf("Histogram written '%s'", fHistogramFilename)
	}
}
