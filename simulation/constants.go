package simulation

import "math"

// Sampling grid. Time is measured in nanoseconds, frequencies in GHz
// (1/ns), so the configured filter cutoffs and carrier frequencies map
// directly into the sampled domain.
const (
	// BufferSize is the fixed length of every output buffer. The spectrum
	// analyzer requires a power of two, which this constant guarantees
	// structurally.
	BufferSize = 1024

	// SampleIntervalNs is the simulation time step between consecutive
	// samples (20 GS/s, Nyquist at 10 GHz).
	SampleIntervalNs = 0.05

	// SampleRateGHz is the sample rate implied by SampleIntervalNs.
	SampleRateGHz = 1.0 / SampleIntervalNs
)

const (
	// DephasingScale converts accumulated noise variance at the qubit into
	// a dephasing rate in 1/us. Empirical: calibrated so a 16-bit DAC with
	// every other noise source disabled leaves T2* at the T1-limited
	// ceiling.
	DephasingScale = 1e4

	// ThermalNoiseCoeff scales sqrt(temperature in K) into a thermal noise
	// voltage sigma for a transmission-line stage.
	ThermalNoiseCoeff = 2e-4

	// AmbientTemperatureK is the input temperature feeding the
	// room-temperature stage of the noise-temperature cascade.
	AmbientTemperatureK = 290.0

	// AmplifierNoiseCoeff scales the uniform perturbation an amplifier adds
	// per sample, proportional to its linear gain.
	AmplifierNoiseCoeff = 1e-3

	// PinkUnitVariance is the approximate variance of one pink generator
	// sample, used by the coherence estimator to account for flicker
	// noise analytically.
	PinkUnitVariance = 0.03

	// HumFrequencyGHz is the fixed interference hum frequency in the
	// sampled (visual) domain.
	HumFrequencyGHz = 0.05

	// SpikeProbability is the per-sample chance of an interference spike.
	SpikeProbability = 0.005

	// SpikeScale multiplies the interference level to bound spike
	// amplitude.
	SpikeScale = 8.0

	// MinSignalPowerDbm floors the reported signal power so a silent frame
	// never produces log(0).
	MinSignalPowerDbm = -140.0

	// FilterQ is the fixed quality factor used for every chain filter.
	FilterQ = math.Sqrt2 / 2
)
