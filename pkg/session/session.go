package session

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/tiff"

	"github.com/abellard/rawtone/pkg/develop"
	"github.com/abellard/rawtone/pkg/grade"
	"github.com/abellard/rawtone/pkg/rawfile"
)

// A Session caches the most recent decode, so repeated grading passes
// (live preview scrubbing) don't re-run demosaic. The mutex only
// guards wholesale replacement of the buffer pointer; the buffer
// itself is immutable, so readers grade whichever snapshot they got.
type Session struct {
	mu  sync.Mutex
	buf *develop.LinearBuffer
}

// Load decodes a sensor dump at the given quality and caches the
// resulting linear buffer, replacing any previous one.
func (s *Session)Load(path string, q develop.Quality) (*develop.LinearBuffer, error) {
	frame, err := rawfile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("session load: %w", err)
	}

	buf, err := develop.Demosaic(frame, q)
	if err != nil {
		return nil, fmt.Errorf("session demosaic %s: %w", path, err)
	}

	s.mu.Lock()
	s.buf = buf
	s.mu.Unlock()

	return buf, nil
}

// Buffer returns the cached linear buffer, or nil before the first
// Load.
func (s *Session)Buffer() *develop.LinearBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf
}

// Export re-decodes at full quality, grades, and writes the final
// raster. The preview cache is left pointing at the full buffer,
// which is what the next grading pass wants anyway.
func (s *Session)Export(rawPath string, p grade.Params, outPath string) error {
	buf, err := s.Load(rawPath, develop.Full)
	if err != nil {
		return err
	}
	return WriteImage(Render(buf, p), outPath)
}

// Render maps the grading pipeline over every pixel of a linear
// buffer and quantizes to an 8-bit raster.
func Render(buf *develop.LinearBuffer, p grade.Params) *image.RGBA {
	img := image.NewRGBA(buf.Bounds())
	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			r, g, b := buf.RGBAt(x, y)
			r, g, b = grade.Apply(r, g, b, p)
			img.SetRGBA(x, y, color.RGBA{quantize(r), quantize(g), quantize(b), 0xFF})
		}
	}
	return img
}

// quantize clamps to the displayable range; the grading pipeline
// deliberately leaves values unclamped above 1.
func quantize(v float64) uint8 {
	if v < 0 { v = 0 }
	if v > 1 { v = 1 }
	return uint8(v * 255.0)
}

func WriteImage(img image.Image, filename string) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer writer.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return png.Encode(writer, img)
	case ".tif", ".tiff":
		return tiff.Encode(writer, img, nil)
	default:
		return fmt.Errorf("write '%s': unknown output format", filename)
	}
}

// AutoLevels suggests blacks/whites that pin the buffer's 1st and
// 99th luminance percentiles to the ends of the levels range.
// Everything else stays neutral.
func AutoLevels(buf *develop.LinearBuffer) grade.Params {
	st := buf.Stats()
	p := grade.Neutral()
	p.Blacks = st.P01 / 0.2          // blackPoint = Blacks * 0.2
	p.Whites = (st.P99 - 1.0) / 0.2  // whitePoint = 1 + Whites * 0.2
	return p
}
