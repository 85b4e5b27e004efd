package simulation

import "math"

// t2SmoothingAlpha is the weight of the previous smoothed estimate in the
// exponential average reported externally.
const t2SmoothingAlpha = 0.95

// CoherenceEstimator derives the qubit's inhomogeneous coherence time T2*
// by propagating noise variance analytically through the signal path.
// Variance accumulates stage by stage, scaled by the squared linear gain
// of every stage it subsequently passes through, so filter-induced group
// delay cannot corrupt the estimate the way sample subtraction would.
type CoherenceEstimator struct {
	smoothed float64
	seeded   bool
}

// NewCoherenceEstimator returns an unseeded estimator; the first Update
// seeds the smoothed value directly.
func NewCoherenceEstimator() *CoherenceEstimator {
	return &CoherenceEstimator{}
}

// accumulatedVariance walks the full pipeline and returns the noise
// variance referred to the qubit.
func accumulatedVariance(cfg *Config) float64 {
	// AWG phase jitter: a uniform jitter of width pn on the carrier phase
	// perturbs the signal by ~A*jitter in quadrature, so the variance
	// contribution is 0.5*A^2*Var(jitter) with Var = pn^2/12.
	a := cfg.Source.Amplitude
	pn := cfg.Synth.PhaseNoise
	v := 0.5 * a * a * pn * pn / 12

	// DAC quantization error: uniform over one step.
	step := QuantizationStep(cfg.Quantizer.Bits)
	v += step * step / 12

	// Room-temperature stage: scale by squared stage gain, then inject.
	gRoom := ChainVoltageGain(cfg.RoomStage.Components)
	v *= gRoom * gRoom
	v += thermalVariance(cfg.RoomStage.TemperatureK)
	v += interferenceVariance(cfg.RoomStage.InterferenceLevel)

	// Cryogenic stage.
	gCryo := ChainVoltageGain(cfg.CryoStage.Components)
	v *= gCryo * gCryo
	v += thermalVariance(cfg.CryoStage.TemperatureK)
	fl := cfg.CryoStage.FlickerIntensity
	v += PinkUnitVariance * fl * fl

	// Qubit coupling.
	v *= cfg.Qubit.Coupling * cfg.Qubit.Coupling

	return v
}

func thermalVariance(tempK float64) float64 {
	if tempK <= 0 {
		return 0
	}
	sigma := ThermalNoiseCoeff * math.Sqrt(tempK)
	return sigma * sigma
}

// estimateT2 converts accumulated variance into T2* in microseconds:
// dephasing rate from variance, total decay rate including energy
// relaxation, clamped to the T1-limited ceiling of 2*T1.
func estimateT2(cfg *Config) float64 {
	t1 := cfg.Qubit.T1Us
	if t1 <= 0 {
		return 0
	}
	ceiling := 2 * t1

	gammaPhi := accumulatedVariance(cfg) * DephasingScale
	gamma2 := 1/(2*t1) + gammaPhi
	if gamma2 <= 0 {
		return ceiling
	}
	t2 := 1 / gamma2
	if t2 > ceiling {
		return ceiling
	}
	return t2
}

// Update folds the current configuration's T2* into the exponentially
// smoothed estimate and returns it. The first call seeds the average.
func (ce *CoherenceEstimator) Update(cfg *Config) float64 {
	current := estimateT2(cfg)
	if !ce.seeded {
		ce.smoothed = current
		ce.seeded = true
	} else {
		ce.smoothed = ce.smoothed*t2SmoothingAlpha + current*(1-t2SmoothingAlpha)
	}
	return ce.smoothed
}

// Reset discards the smoothing history.
func (ce *CoherenceEstimator) Reset() {
	ce.smoothed = 0
	ce.seeded = false
}
