package rawfile

import (
	"fmt"
	"image"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/tiff"
	"gopkg.in/yaml.v2"
)

// The native RAW container parsing lives outside this module; what we
// load here is a sensor dump - a 16-bit grayscale TIFF holding the
// mosaiced photosite samples - plus a YAML sidecar carrying the
// calibration data the container would normally provide.

// calSidecar is the on-disk calibration record. Slices rather than
// arrays so a short sidecar fails with a useful message.
type calSidecar struct {
	Pattern      string
	BlackLevel   []int
	WhiteLevel   []int
	WhiteBalance []float64
	CameraToXYZ  []float64 // 9 or 12 entries, row-major
}

// Load reads `foo.tif` and its `foo.yaml` calibration sidecar into a
// SensorFrame.
func Load(filename string) (*SensorFrame, error) {
	ext := filepath.Ext(filename)
	if strings.ToLower(ext) != ".tif" && strings.ToLower(ext) != ".tiff" {
		return nil, fmt.Errorf("load '%s': not a sensor dump TIFF", filename)
	}

	f := &SensorFrame{SampleFormat: SampleUint}

	sidecar := strings.TrimSuffix(filename, ext) + ".yaml"
	if err := loadCalibration(sidecar, f); err != nil {
		return nil, fmt.Errorf("load '%s': %v", filename, err)
	}

	if reader, err := os.Open(filename); err != nil {
		return nil, fmt.Errorf("open+r img '%s': %v", filename, err)
	} else if img, err := tiff.Decode(reader); err != nil {
		return nil, fmt.Errorf("tiff loading '%s': %v", filename, err)
	} else if err := readSamples(img, f); err != nil {
		return nil, fmt.Errorf("load '%s': %w", filename, err)
	}

	// EXIF is informational, so a dump with none is fine.
	if reader, err := os.Open(filename); err == nil {
		if ex, err := exif.Decode(reader); err == nil {
			readExif(ex, f)
		}
		reader.Close()
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("load '%s': %v", filename, err)
	}

	return f, nil
}

func loadCalibration(filename string, f *SensorFrame) error {
	contents, err := ioutil.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("calibration read %s: %v", filename, err)
	}

	cal := calSidecar{}
	if err := yaml.Unmarshal(contents, &cal); err != nil {
		return fmt.Errorf("calibration yaml %s: %v", filename, err)
	}

	return applyCalibration(cal, f)
}

func applyCalibration(cal calSidecar, f *SensorFrame) error {
	pattern, err := ParseCFAPattern(cal.Pattern)
	if err != nil {
		return err
	}
	f.CFA = pattern

	if len(cal.BlackLevel) != 4 || len(cal.WhiteLevel) != 4 || len(cal.WhiteBalance) != 4 {
		return fmt.Errorf("calibration wants 4 entries per channel level, got black=%d white=%d wb=%d",
			len(cal.BlackLevel), len(cal.WhiteLevel), len(cal.WhiteBalance))
	}
	copy(f.BlackLevel[:], cal.BlackLevel)
	copy(f.WhiteLevel[:], cal.WhiteLevel)
	copy(f.WhiteBalance[:], cal.WhiteBalance)

	switch len(cal.CameraToXYZ) {
	case 12:
		copy(f.CameraToXYZ[:], cal.CameraToXYZ)
	case 9:
		// 3x3 record; leave the 4th column zeroed
		for row := 0; row < 3; row++ {
			copy(f.CameraToXYZ[row*4:row*4+3], cal.CameraToXYZ[row*3:row*3+3])
		}
	default:
		return fmt.Errorf("calibration cameratoxyz wants 9 or 12 entries, got %d", len(cal.CameraToXYZ))
	}

	return nil
}

// readSamples pulls the photosite values out of the decoded TIFF.
// Only 16-bit grayscale carries raw integer samples; anything else
// has been through a renderer already, or isn't integer data at all.
func readSamples(img image.Image, f *SensorFrame) error {
	gray, ok := img.(*image.Gray16)
	if !ok {
		return fmt.Errorf("sensor dump is %T, want gray16: %w", img, ErrUnsupportedEncoding)
	}

	b := gray.Bounds()
	f.Width, f.Height = b.Dx(), b.Dy()
	f.Samples = make([]uint16, f.Width*f.Height)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.Samples[y*f.Width+x] = gray.Gray16At(b.Min.X+x, b.Min.Y+y).Y
		}
	}

	return nil
}

func readExif(ex *exif.Exif, f *SensorFrame) {
	if tag, err := ex.Get(exif.ISOSpeedRatings); err == nil {
		if val, err := tag.Int64(0); err == nil {
			f.Meta.ISO = val
		}
	}

	if tag, err := ex.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil {
			f.Meta.ShutterSpeed = fmt.Sprintf("%d/%d", num, denom)
		}
	}
}
