package rawfile

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

const testSidecar = `
pattern: RGGB
blacklevel: [0, 0, 0, 0]
whitelevel: [4095, 4095, 4095, 4095]
whitebalance: [1, 1, 1, 1]
cameratoxyz: [0, 0, 0, 0, 0, 0, 0, 0, 0]
`

// writeSensorDump encodes img as frame.tif with a standard sidecar,
// returning the tif path.
func writeSensorDump(t *testing.T, dir string, img image.Image) string {
	t.Helper()

	tifPath := filepath.Join(dir, "frame.tif")
	w, err := os.Create(tifPath)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(w, img, nil))
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "frame.yaml"), []byte(testSidecar), 0644))
	return tifPath
}

func TestLoadSensorDump(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(y*4 + x)})
		}
	}

	path := writeSensorDump(t, t.TempDir(), img)
	f, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, f.Width)
	assert.Equal(t, 4, f.Height)
	assert.Equal(t, SampleUint, f.SampleFormat)
	assert.Equal(t, uint16(0), f.Samples[0])
	assert.Equal(t, uint16(15), f.Samples[15])
	assert.Equal(t, "RGGB", f.CFA.String())
	assert.Equal(t, [4]int{4095, 4095, 4095, 4095}, f.WhiteLevel)
}

func TestLoadRejectsRenderedImages(t *testing.T) {
	// An RGBA TIFF has been through a renderer; it is not mosaiced
	// integer sensor data.
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	path := writeSensorDump(t, t.TempDir(), img)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
}

func TestLoadMissingSidecar(t *testing.T) {
	dir := t.TempDir()
	tifPath := filepath.Join(dir, "frame.tif")
	w, err := os.Create(tifPath)
	require.NoError(t, err)
	require.NoError(t, tiff.Encode(w, image.NewGray16(image.Rect(0, 0, 2, 2)), nil))
	require.NoError(t, w.Close())

	_, err = Load(tifPath)
	assert.Error(t, err)
}

func TestLoadRejectsNonTIFF(t *testing.T) {
	_, err := Load("frame.jpg")
	assert.Error(t, err)
}
