package develop

import(
	"fmt"
	"math"

	"github.com/abellard/rawtone/pkg/rawfile"
	"github.com/abellard/rawtone/pkg/rmath"
)

// Quality picks the sampling density: Preview aims at an interactive
// window, Full keeps everything the superpixel model can give.
type Quality int

const(
	Preview Quality = iota
	Full
)

// TargetPreviewWidth is the interactive preview width the step
// selection aims for.
const TargetPreviewWidth = 1024

// StepFor returns the downsample factor for one demosaic pass. The
// CFA repeats on a 2x2 period, so the step is always even - an odd
// step would misalign color sampling between blocks - and never below
// the native periodicity of 2.
func StepFor(q Quality, sensorWidth int) int {
	step := 2
	if q == Preview {
		step = int(math.Ceil(float64(sensorWidth) / float64(TargetPreviewWidth)))
		if step < 2 { step = 2 }
	}
	if step%2 != 0 { step++ }
	return step
}

// CalibrationMatrix composes the camera's 3x4 camera->XYZ record
// (4th column dropped) with the fixed XYZ->sRGB matrix, giving a
// single camera->display-linear transform. A composition that sums
// to exactly zero signals missing calibration, and falls back to
// identity so the averaged camera RGB passes straight through.
func CalibrationMatrix(camToXYZ [12]float64) rmath.Mat3 {
	cam := rmath.Mat3{
		camToXYZ[0], camToXYZ[1], camToXYZ[2],
		camToXYZ[4], camToXYZ[5], camToXYZ[6],
		camToXYZ[8], camToXYZ[9], camToXYZ[10],
	}

	m := rmath.XYZD65_to_linear_sRGB.Mult(cam)
	if m.Sum() == 0.0 {
		return rmath.Identity()
	}
	return m
}

// wbGains normalizes the white balance coefficients so green is
// exactly 1.0. A non-positive green coefficient means the record is
// junk; everything defaults to 1.0 rather than dividing by it.
func wbGains(wb [4]float64) [4]float64 {
	if wb[rawfile.ChanG] <= 0 {
		return [4]float64{1, 1, 1, 1}
	}
	g := wb[rawfile.ChanG]
	return [4]float64{wb[0] / g, wb[1] / g, wb[2] / g, wb[3] / g}
}

// Both green photosites accumulate into the output G channel.
var bucketFor = [4]int{0, 1, 2, 1}

// Demosaic runs the superpixel block-average over the frame: each
// step x step sensor block becomes one output pixel. Per sample it
// subtracts the channel's black level, normalizes by the green
// channel's usable range (one shared range keeps the channels
// stable), clamps at zero, applies the white balance gain, and
// accumulates into the R/G/B buckets. Averaged camera RGB then goes
// through the calibration matrix and is clamped to [0,1].
func Demosaic(f *rawfile.SensorFrame, q Quality) (*LinearBuffer, error) {
	if f.SampleFormat != rawfile.SampleUint {
		return nil, fmt.Errorf("demosaic %dx%d: %w", f.Width, f.Height, rawfile.ErrUnsupportedEncoding)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("demosaic: %v", err)
	}

	step := StepFor(q, f.Width)
	outW, outH := f.Width/step, f.Height/step

	cal := CalibrationMatrix(f.CameraToXYZ)
	gains := wbGains(f.WhiteBalance)

	normRange := float64(f.WhiteLevel[rawfile.ChanG] - f.BlackLevel[rawfile.ChanG])
	if normRange <= 0 { normRange = 1 } // corrupt calibration; keep the math finite

	buf := NewLinearBuffer(outW, outH)

	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {

			var sum [3]float64
			var count [3]int

			for dy := 0; dy < step; dy++ {
				y := oy*step + dy
				if y >= f.Height { break }
				for dx := 0; dx < step; dx++ {
					x := ox*step + dx
					if x >= f.Width { break }

					c := f.CFA.ColorAt(x, y)
					v := (float64(f.Samples[y*f.Width+x]) - float64(f.BlackLevel[c])) / normRange
					if v < 0 { v = 0 }
					v *= gains[c]

					b := bucketFor[c]
					sum[b] += v
					count[b]++
				}
			}

			// Blocks truncated at the sensor edge can miss a channel
			// entirely; those default to 0 rather than dividing by zero.
			var avg rmath.Vec3
			for i := 0; i < 3; i++ {
				if count[i] > 0 {
					avg[i] = sum[i] / float64(count[i])
				}
			}

			rgb := cal.Apply(avg)
			rgb.FloorAt(0.0)
			rgb.CeilingAt(1.0)
			buf.setRGB(ox, oy, rgb)
		}
	}

	return buf, nil
}
