package simulation

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumBins is the number of one-sided frequency bins per frame.
const SpectrumBins = BufferSize / 2

// SpectrumFrame is one frequency-domain snapshot of the noisy buffer.
type SpectrumFrame struct {
	// Magnitudes holds the windowed, length-normalized magnitude per bin.
	Magnitudes []float64 `json:"magnitudes"`
	// BinWidthGHz is the frequency resolution of one bin.
	BinWidthGHz float64 `json:"bin_width_ghz"`
	// CenterGHz echoes the requested display center frequency.
	CenterGHz float64 `json:"center_ghz"`
}

// SpectrumAnalyzer computes the magnitude spectrum of fixed-length sample
// buffers. The Blackman-Harris analysis window is precomputed once for the
// fixed buffer size; the FFT plan is reused across calls. Independent of
// the time-domain engine: safe to invoke every tick, paused or not.
type SpectrumAnalyzer struct {
	fft      *fourier.FFT
	window   []float64
	windowed []float64
}

// NewSpectrumAnalyzer creates an analyzer for BufferSize-point buffers.
func NewSpectrumAnalyzer() *SpectrumAnalyzer {
	sa := &SpectrumAnalyzer{
		fft:      fourier.NewFFT(BufferSize),
		window:   make([]float64, BufferSize),
		windowed: make([]float64, BufferSize),
	}

	// 4-term Blackman-Harris.
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	for i := range sa.window {
		p := 2 * math.Pi * float64(i) / float64(BufferSize-1)
		sa.window[i] = a0 - a1*math.Cos(p) + a2*math.Cos(2*p) - a3*math.Cos(3*p)
	}

	return sa
}

// Analyze windows buf and returns its one-sided magnitude spectrum. Inputs
// shorter than BufferSize are zero-padded; longer inputs are truncated.
func (sa *SpectrumAnalyzer) Analyze(buf []float64, centerGHz float64) *SpectrumFrame {
	n := len(buf)
	if n > BufferSize {
		n = BufferSize
	}
	for i := 0; i < n; i++ {
		sa.windowed[i] = buf[i] * sa.window[i]
	}
	for i := n; i < BufferSize; i++ {
		sa.windowed[i] = 0
	}

	coeffs := sa.fft.Coefficients(nil, sa.windowed)

	mags := make([]float64, SpectrumBins)
	for i := range mags {
		mags[i] = 2 * cmplxAbs(coeffs[i]) / float64(BufferSize)
	}

	return &SpectrumFrame{
		Magnitudes:  mags,
		BinWidthGHz: SampleRateGHz / float64(BufferSize),
		CenterGHz:   centerGHz,
	}
}

func cmplxAbs(c complex128) float64 {
	return math.Hypot(real(c), imag(c))
}
