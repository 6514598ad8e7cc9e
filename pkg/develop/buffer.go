package develop

import(
	"fmt"
	"image"
	"image/color"
	"os"
	"sort"

	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	"gonum.org/v1/gonum/stat"

	"github.com/abellard/rawtone/pkg/rmath"
)

// A LinearBuffer is one demosaiced, calibrated frame in linear light:
// RGBA float tuples, row-major, every channel in [0,1], A always 1.
// It is immutable once Demosaic has produced it - a new decode
// replaces the whole buffer, nothing mutates it in place.
//
// Implements image.Image and hdr.Image, so linear frames drop
// straight into anything that consumes those.
type LinearBuffer struct {
	W, H int
	Pix  []float32 // RGBA interleaved
}

func NewLinearBuffer(w, h int) *LinearBuffer {
	return &LinearBuffer{W: w, H: h, Pix: make([]float32, 4*w*h)}
}

func (lb *LinearBuffer)setRGB(x, y int, v rmath.Vec3) {
	i := 4 * (y*lb.W + x)
	lb.Pix[i+0] = float32(v[0])
	lb.Pix[i+1] = float32(v[1])
	lb.Pix[i+2] = float32(v[2])
	lb.Pix[i+3] = 1.0
}

// RGBAt returns the linear RGB triple at (x,y).
func (lb *LinearBuffer)RGBAt(x, y int) (float64, float64, float64) {
	i := 4 * (y*lb.W + x)
	return float64(lb.Pix[i+0]), float64(lb.Pix[i+1]), float64(lb.Pix[i+2])
}

// Implement image.Image
func (lb *LinearBuffer)ColorModel() color.Model { return hdrcolor.RGBModel }
func (lb *LinearBuffer)Bounds() image.Rectangle { return image.Rectangle{Max: image.Point{lb.W, lb.H}} }
func (lb *LinearBuffer)At(x, y int) color.Color { return lb.HDRAt(x, y) }

// Implement hdr.Image
func (lb *LinearBuffer)HDRAt(x, y int) hdrcolor.Color {
	r, g, b := lb.RGBAt(x, y)
	return hdrcolor.RGB{R: r, G: g, B: b}
}
func (lb *LinearBuffer)Size() int { return lb.W * lb.H }

func (lb *LinearBuffer)String() string {
	return fmt.Sprintf("LinearBuffer %dx%d", lb.W, lb.H)
}

// WriteToHDR outputs the linear frame as a Radiance RGBE file. You
// can load this into photoshop or other HDR tools to inspect the
// pre-grade state.
func (lb *LinearBuffer)WriteToHDR(filename string) error {
	if writer, err := os.Create(filename); err != nil {
		return fmt.Errorf("LinearBuffer.WriteToHDR, open+w '%s': %v", filename, err)
	} else {
		defer writer.Close()
		return rgbe.Encode(writer, lb)
	}
}

// Stats summarizes the buffer's BT.709 luminance distribution.
type Stats struct {
	MeanLuma float64
	P01      float64 // 1st percentile
	P99      float64 // 99th percentile
}

func (lb *LinearBuffer)Stats() Stats {
	lumas := make([]float64, 0, lb.W*lb.H)
	for y := 0; y < lb.H; y++ {
		for x := 0; x < lb.W; x++ {
			r, g, b := lb.RGBAt(x, y)
			lumas = append(lumas, 0.2126*r+0.7152*g+0.0722*b)
		}
	}
	if len(lumas) == 0 {
		return Stats{}
	}

	sort.Float64s(lumas) // stat.Quantile wants sorted input
	return Stats{
		MeanLuma: stat.Mean(lumas, nil),
		P01:      stat.Quantile(0.01, stat.Empirical, lumas, nil),
		P99:      stat.Quantile(0.99, stat.Empirical, lumas, nil),
	}
}
