package rawfile

import(
	"errors"
	"fmt"
)

// Channel indices, used everywhere a per-channel calibration array is
// indexed. A Bayer tile has two green photosites; the second one gets
// its own calibration slot but contributes to the same output channel.
const(
	ChanR  = 0
	ChanG  = 1
	ChanB  = 2
	ChanG2 = 3
)

// ErrUnsupportedEncoding means the sensor dump holds samples in a
// representation the demosaic engine can't interpret (e.g. native
// floating point). It is a hard failure, never silently coerced.
var ErrUnsupportedEncoding = errors.New("unsupported sensor sample encoding")

type SampleFormat int

const(
	SampleUint  SampleFormat = iota // unsigned integer photosite counts
	SampleFloat                     // floating-point native sensors, not supported
)

// A CFAPattern is the repeating 2x2 color filter tile over the
// sensor, row-major. Entries are channel indices.
type CFAPattern [4]uint8

// ParseCFAPattern reads a pattern string like "RGGB" or "BGGR". The
// first green in the tile maps to ChanG, the second to ChanG2.
func ParseCFAPattern(s string) (CFAPattern, error) {
	var p CFAPattern
	if len(s) != 4 {
		return p, fmt.Errorf("cfa pattern '%s': want 4 entries", s)
	}

	greens := 0
	for i, c := range s {
		switch c {
		case 'R', 'r': p[i] = ChanR
		case 'B', 'b': p[i] = ChanB
		case 'G', 'g':
			if greens == 0 {
				p[i] = ChanG
			} else {
				p[i] = ChanG2
			}
			greens++
		default:
			return p, fmt.Errorf("cfa pattern '%s': unknown filter '%c'", s, c)
		}
	}

	if greens != 2 {
		return p, fmt.Errorf("cfa pattern '%s': want 2 greens, got %d", s, greens)
	}

	return p, nil
}

// ColorAt maps a sensor coordinate to its channel index. The tile
// repeats on a 2x2 period.
func (p CFAPattern)ColorAt(x, y int) int {
	return int(p[(y&1)*2 + (x&1)])
}

func (p CFAPattern)String() string {
	names := [4]byte{'R', 'G', 'B', 'G'}
	return string([]byte{names[p[0]], names[p[1]], names[p[2]], names[p[3]]})
}

// Exposure metadata pulled from EXIF where present. Informational
// only; the numeric pipeline doesn't consume it.
type Metadata struct {
	ISO          int64
	ShutterSpeed string // e.g. "1/250"
}

// A SensorFrame is one decoded mosaiced capture: the photosite
// samples plus everything the calibration stages need. It is consumed
// read-only by the demosaic engine.
type SensorFrame struct {
	Width, Height int
	Samples       []uint16 // row-major, one sample per photosite
	SampleFormat  SampleFormat

	CFA          CFAPattern
	BlackLevel   [4]int
	WhiteLevel   [4]int
	WhiteBalance [4]float64

	// Maps calibrated camera-channel values to CIE XYZ(D65). Stored
	// 3x4 row-major; the 4th column carries the second-green
	// contribution, which is negligible and dropped downstream.
	CameraToXYZ [12]float64

	Meta Metadata
}

func (f *SensorFrame)Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("sensor frame %dx%d: bad dimensions", f.Width, f.Height)
	}
	if len(f.Samples) != f.Width*f.Height {
		return fmt.Errorf("sensor frame %dx%d: have %d samples, want %d",
			f.Width, f.Height, len(f.Samples), f.Width*f.Height)
	}
	return nil
}

func (f *SensorFrame)String() string {
	return fmt.Sprintf("%dx%d %s black%v white%v wb%v iso%d",
		f.Width, f.Height, f.CFA, f.BlackLevel, f.WhiteLevel, f.WhiteBalance, f.Meta.ISO)
}
