package grade

import "math"

// Params is one full set of grading controls. The zero value is
// neutral for every field except Temperature, where 5500K is neutral;
// use Neutral() rather than Params{}.
//
// No field is range-checked: every stage stays finite for any finite
// input, so a wild slider value grades ugly rather than crashing.
type Params struct {
	Exposure    float64 // EV; 2^Exposure multiplier
	Contrast    float64 // 0 neutral; negative flattens midtone slope
	Temperature float64 // Kelvin; 5500 neutral
	Tint        float64 // -100..100 green shift
	Highlights  float64 // EV-like, masked to bright regions
	Shadows     float64 // EV-like, masked to dark regions
	Whites      float64 // moves the levels white point
	Blacks      float64 // moves the levels black point
	Saturation  float64 // 0 neutral, -1 full desaturation
}

func Neutral() Params {
	return Params{Temperature: 5500}
}

func (p Params)IsNeutral() bool {
	return p == Neutral()
}

// Luma is the ITU-R BT.709 luma of a linear RGB triple.
func Luma(r, g, b float64) float64 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func clamp01(v float64) float64 {
	if v < 0 { return 0 }
	if v > 1 { return 1 }
	return v
}

// Apply grades one linear pixel into display space. Pure function,
// no cross-pixel state, so it maps over a buffer at any resolution -
// the 1024-wide preview and the full export run the identical math.
//
// Stage order is load-bearing. In particular the shadow/highlight
// masks come from the luma *before* either sub-stage runs; lifting
// the shadows must not shrink its own mask.
func Apply(r, g, b float64, p Params) (float64, float64, float64) {

	// White balance. Only the relevant channel moves per direction:
	// warming pushes red up, cooling pushes blue up.
	ratio := (p.Temperature - 5500.0) / 5500.0
	r *= 1.0 + math.Max(ratio, 0.0)
	b *= 1.0 - math.Min(ratio, 0.0)
	g *= 1.0 + p.Tint/100.0

	// Exposure
	if p.Exposure != 0 {
		mag := math.Pow(2, p.Exposure)
		r *= mag
		g *= mag
		b *= mag
	}

	// Contrast, pivoted at mid-gray
	if p.Contrast != 0 {
		c := 1.0 + p.Contrast
		r = (r-0.5)*c + 0.5
		g = (g-0.5)*c + 0.5
		b = (b-0.5)*c + 0.5
	}

	// Shadows / highlights, masked by pre-stage luma
	luma := Luma(r, g, b)
	shadowMask := 1.0 - clamp01(luma/0.6)
	highMask := clamp01((luma - 0.4) / 0.6)

	if p.Shadows != 0 {
		lift := math.Pow(2, p.Shadows) - 1.0
		fact := lift * shadowMask * 0.5
		r += r * fact
		g += g * fact
		b += b * fact
	}

	if p.Highlights != 0 {
		gain := math.Pow(2, p.Highlights) - 1.0
		fact := gain * highMask * 0.5
		r += r * fact
		g += g * fact
		b += b * fact
	}

	// Levels. Degenerate ranges get forced open so the remap never
	// divides by anything under 0.001.
	blackPoint := p.Blacks * 0.2
	whitePoint := 1.0 + p.Whites*0.2
	if whitePoint-blackPoint < 0.001 {
		whitePoint = blackPoint + 0.001
	}
	rng := whitePoint - blackPoint
	r = (r - blackPoint) / rng
	g = (g - blackPoint) / rng
	b = (b - blackPoint) / rng

	// Saturation, about the post-levels luma
	if p.Saturation != 0 {
		l := Luma(r, g, b)
		satMult := 1.0 + p.Saturation
		r = l + (r-l)*satMult
		g = l + (g-l)*satMult
		b = l + (b-l)*satMult
	}

	// Gamma encode. No ceiling here; clamping to displayable range is
	// the quantizer's job.
	const gamma = 1.0 / 2.2
	r = math.Pow(math.Max(r, 0), gamma)
	g = math.Pow(math.Max(g, 0), gamma)
	b = math.Pow(math.Max(b, 0), gamma)

	return r, g, b
}
