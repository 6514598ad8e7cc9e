package rawfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCFAPattern(t *testing.T) {
	p, err := ParseCFAPattern("RGGB")
	require.NoError(t, err)
	assert.Equal(t, CFAPattern{ChanR, ChanG, ChanG2, ChanB}, p)

	p, err = ParseCFAPattern("BGGR")
	require.NoError(t, err)
	assert.Equal(t, CFAPattern{ChanB, ChanG, ChanG2, ChanR}, p)

	// the two greens get distinct calibration slots
	p, err = ParseCFAPattern("GRBG")
	require.NoError(t, err)
	assert.Equal(t, CFAPattern{ChanG, ChanR, ChanB, ChanG2}, p)
}

func TestParseCFAPatternRejectsJunk(t *testing.T) {
	for _, s := range []string{"", "RGB", "RGGBX", "RRBB", "GGGG", "XGGB"} {
		_, err := ParseCFAPattern(s)
		assert.Error(t, err, "pattern %q", s)
	}
}

func TestColorAtRepeatsOn2x2Period(t *testing.T) {
	p, err := ParseCFAPattern("RGGB")
	require.NoError(t, err)

	assert.Equal(t, ChanR, p.ColorAt(0, 0))
	assert.Equal(t, ChanG, p.ColorAt(1, 0))
	assert.Equal(t, ChanG2, p.ColorAt(0, 1))
	assert.Equal(t, ChanB, p.ColorAt(1, 1))

	// same tile two periods over
	assert.Equal(t, ChanR, p.ColorAt(4, 6))
	assert.Equal(t, ChanG, p.ColorAt(5, 6))
	assert.Equal(t, ChanG2, p.ColorAt(4, 7))
	assert.Equal(t, ChanB, p.ColorAt(5, 7))
}

func TestApplyCalibration3x3Matrix(t *testing.T) {
	cal := calSidecar{
		Pattern:      "RGGB",
		BlackLevel:   []int{512, 512, 512, 512},
		WhiteLevel:   []int{16383, 16383, 16383, 16383},
		WhiteBalance: []float64{2.1, 1.0, 1.6, 1.0},
		CameraToXYZ: []float64{
			1, 2, 3,
			4, 5, 6,
			7, 8, 9,
		},
	}

	f := &SensorFrame{}
	require.NoError(t, applyCalibration(cal, f))

	// 3x3 record lands in a 3x4 with a zeroed 4th column
	assert.Equal(t, [12]float64{
		1, 2, 3, 0,
		4, 5, 6, 0,
		7, 8, 9, 0,
	}, f.CameraToXYZ)
	assert.Equal(t, [4]int{512, 512, 512, 512}, f.BlackLevel)
	assert.Equal(t, [4]float64{2.1, 1.0, 1.6, 1.0}, f.WhiteBalance)
}

func TestApplyCalibrationRejectsShortRecords(t *testing.T) {
	cal := calSidecar{
		Pattern:      "RGGB",
		BlackLevel:   []int{0, 0},
		WhiteLevel:   []int{4095, 4095, 4095, 4095},
		WhiteBalance: []float64{1, 1, 1, 1},
		CameraToXYZ:  make([]float64, 9),
	}
	assert.Error(t, applyCalibration(cal, &SensorFrame{}))

	cal.BlackLevel = []int{0, 0, 0, 0}
	cal.CameraToXYZ = make([]float64, 7)
	assert.Error(t, applyCalibration(cal, &SensorFrame{}))
}

func TestValidate(t *testing.T) {
	f := &SensorFrame{Width: 2, Height: 2, Samples: make([]uint16, 4)}
	assert.NoError(t, f.Validate())

	f.Samples = f.Samples[:3]
	assert.Error(t, f.Validate())

	f = &SensorFrame{Width: 0, Height: 2}
	assert.Error(t, f.Validate())
}
