package simulation

import "math"

// Envelope returns the dimensionless pulse envelope in [0, 1] at absolute
// time tNs. The pulse repeats with the configured period and is centered
// within each period window.
func Envelope(src SourceConfig, tNs float64) float64 {
	if src.Shape == EnvelopeCW {
		return 1.0
	}

	period := src.PeriodNs
	if period <= 0 {
		period = float64(BufferSize) * SampleIntervalNs
	}

	// Position relative to the center of the current period window.
	pos := math.Mod(tNs, period)
	if pos < 0 {
		pos += period
	}
	x := pos - period/2

	halfWidth := src.WidthNs / 2
	if halfWidth <= 0 {
		return 0
	}

	switch src.Shape {
	case EnvelopeSquare:
		return squareEnvelope(x, halfWidth, src.RiseNs)
	case EnvelopeGaussian:
		return gaussianEnvelope(x, halfWidth, src.SigmaNs)
	case EnvelopeHanning, EnvelopeHamming, EnvelopeBlackman:
		return windowEnvelope(src.Shape, x, halfWidth)
	default:
		return 1.0
	}
}

// squareEnvelope is a trapezoid with smooth cosine transition bands: unity
// inside halfWidth-rise of center, zero beyond halfWidth, a raised-cosine
// ramp in between. A zero rise time degenerates to an ideal rectangle.
func squareEnvelope(x, halfWidth, rise float64) float64 {
	d := halfWidth - math.Abs(x) // distance in from the outer edge
	if d < 0 {
		return 0
	}
	if rise <= 0 || d >= rise {
		return 1.0
	}
	return 0.5 * (1 - math.Cos(math.Pi*d/rise))
}

func gaussianEnvelope(x, halfWidth, sigma float64) float64 {
	if math.Abs(x) > halfWidth {
		return 0
	}
	if sigma <= 0 {
		// Degenerate sigma: fall back to a sensible width-derived value
		// rather than dividing by zero.
		sigma = halfWidth / 3
	}
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

// windowEnvelope evaluates a library window over the normalized position
// within the pulse width, zero outside it.
func windowEnvelope(shape EnvelopeShape, x, halfWidth float64) float64 {
	if math.Abs(x) > halfWidth {
		return 0
	}
	p := (x + halfWidth) / (2 * halfWidth) // 0..1 across the pulse
	switch shape {
	case EnvelopeHanning:
		return 0.5 * (1 - math.Cos(2*math.Pi*p))
	case EnvelopeHamming:
		return 0.54 - 0.46*math.Cos(2*math.Pi*p)
	case EnvelopeBlackman:
		return 0.42 - 0.5*math.Cos(2*math.Pi*p) + 0.08*math.Cos(4*math.Pi*p)
	default:
		return 1.0
	}
}
