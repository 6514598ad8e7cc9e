package session

import(
	"fmt"

	"github.com/fogleman/gg"
	"github.com/skypies/util/histogram"

	"github.com/abellard/rawtone/pkg/develop"
	"github.com/abellard/rawtone/pkg/grade"
)

// A ChannelHistogram counts graded 8-bit output values per channel,
// the usual editor histogram. The skypies histograms ride along for
// their stats output.
type ChannelHistogram struct {
	Counts [3][256]int
	Hists  [3]histogram.Histogram
}

// BuildHistogram grades every pixel of the buffer and bins the
// quantized result.
func BuildHistogram(buf *develop.LinearBuffer, p grade.Params) *ChannelHistogram {
	ch := &ChannelHistogram{
		Hists: [3]histogram.Histogram{
			histogram.Histogram{NumBuckets: 256, ValMin: 0, ValMax: 256},
			histogram.Histogram{NumBuckets: 256, ValMin: 0, ValMax: 256},
			histogram.Histogram{NumBuckets: 256, ValMin: 0, ValMax: 256},
		},
	}

	for y := 0; y < buf.H; y++ {
		for x := 0; x < buf.W; x++ {
			r, g, b := buf.RGBAt(x, y)
			r, g, b = grade.Apply(r, g, b, p)
			for i, v := range []float64{r, g, b} {
				bin := int(quantize(v))
				ch.Counts[i][bin]++
				ch.Hists[i].Add(histogram.ScalarVal(bin))
			}
		}
	}

	return ch
}

func (ch *ChannelHistogram)String() string {
	return fmt.Sprintf("R: %v\nG: %v\nB: %v\n", ch.Hists[0], ch.Hists[1], ch.Hists[2])
}

// WriteToPNG renders the histogram as a simple chart, one translucent
// filled curve per channel.
func (ch *ChannelHistogram)WriteToPNG(filename string) error {
	const w, h = 512, 256

	max := 1
	for i := 0; i < 3; i++ {
		for _, n := range ch.Counts[i] {
			if n > max { max = n }
		}
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(0.1, 0.1, 0.1)
	dc.Clear()

	colors := [3][3]float64{{1, 0.2, 0.2}, {0.2, 1, 0.2}, {0.3, 0.4, 1}}
	for i := 0; i < 3; i++ {
		dc.SetRGBA(colors[i][0], colors[i][1], colors[i][2], 0.5)
		for bin := 0; bin < 256; bin++ {
			barH := float64(ch.Counts[i][bin]) / float64(max) * float64(h)
			dc.DrawRectangle(float64(bin*2), float64(h)-barH, 2, barH)
		}
		dc.Fill()
	}

	if err := dc.SavePNG(filename); err != nil {
		return fmt.Errorf("histogram png '%s': %v", filename, err)
	}
	return nil
}
