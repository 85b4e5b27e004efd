// Package simulation models, sample by sample, the signal path of a
// superconducting-qubit control stack: pulse generation, digital I/Q
// synthesis, quantization, upconversion, cascaded transmission-line
// attenuation and filtering with injected thermal and 1/f noise, and the
// resulting qubit decoherence estimate.
package simulation

import (
	"math"
	"math/rand"
)

// Result is the output of one engine invocation. Both buffers are always
// exactly BufferSize samples long.
type Result struct {
	// Ideal is the reference signal at the qubit observation point,
	// regardless of cursor: no noise, no imbalance, no quantization.
	Ideal []float64 `json:"ideal"`
	// Noisy is the degraded signal observed at the requested stage.
	Noisy []float64 `json:"noisy"`
	// MaxAmplitude is the peak absolute value across both buffers, for
	// display scaling.
	MaxAmplitude float64 `json:"max_amplitude"`
	// EstimatedT2Us is the exponentially smoothed T2* estimate.
	EstimatedT2Us float64 `json:"estimated_t2_us"`
	// SignalPowerDbm is the peak signal power at the cursor into 50 ohms.
	SignalPowerDbm float64 `json:"signal_power_dbm"`
	// NoiseTempK is the cascaded effective noise temperature at the
	// cursor; zero before the room-temperature stage.
	NoiseTempK float64 `json:"noise_temp_k"`
}

// Engine computes one simulation frame per call. It owns the only mutable
// state in the core: the per-stage chain filter memories and the pink
// noise tap bank. It is not safe for concurrent Run calls; the external
// driver invokes it synchronously, once per tick.
type Engine struct {
	rng       *rand.Rand
	white     *WhiteNoise
	pink      *PinkNoise
	roomChain *ChainProcessor
	cryoChain *ChainProcessor
	coherence *CoherenceEstimator
}

// NewEngine creates an engine drawing all randomness from rng, so tests
// can supply seeded deterministic sources and multiple instances can run
// independently.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{
		rng:       rng,
		white:     NewWhiteNoise(rng),
		pink:      NewPinkNoise(rng),
		roomChain: NewChainProcessor(rng),
		cryoChain: NewChainProcessor(rng),
		coherence: NewCoherenceEstimator(),
	}
}

// ResetState clears the persistent filter and pink-noise memories and the
// T2 smoothing history. Explicit only; Run never resets implicitly.
func (e *Engine) ResetState() {
	e.roomChain.Reset()
	e.cryoChain.Reset()
	e.pink.Reset()
	e.coherence.Reset()
}

// Run computes one frame: BufferSize samples starting at elapsedNs, with
// the pipeline applied up to and including cursor. Apart from the chain
// filter memories and the pink-noise taps it is a pure function of
// (cfg, elapsedNs, cursor), so the driver may re-invoke it at a frozen
// timestamp after a configuration change while paused.
func (e *Engine) Run(cfg *Config, elapsedNs float64, cursor Stage) *Result {
	cursor = cursor.Clamp()

	e.roomChain.Sync(cfg.RoomStage.Components)
	e.cryoChain.Sync(cfg.CryoStage.Components)

	idealGain := cfg.Qubit.Coupling *
		ChainVoltageGain(cfg.RoomStage.Components) *
		ChainVoltageGain(cfg.CryoStage.Components)
	idealFreq := cfg.Synth.FrequencyGHz + cfg.Mixer.LOFrequencyGHz

	ideal := make([]float64, BufferSize)
	noisy := make([]float64, BufferSize)
	maxAmp := 0.0

	for i := 0; i < BufferSize; i++ {
		t := elapsedNs + float64(i)*SampleIntervalNs
		env := Envelope(cfg.Source, t)

		ideal[i] = idealGain * cfg.Source.Amplitude * env *
			math.Cos(2*math.Pi*idealFreq*t+cfg.Synth.PhaseRad)
		noisy[i] = e.pipelineSample(cfg, env, t, cursor)

		if a := math.Abs(ideal[i]); a > maxAmp {
			maxAmp = a
		}
		if a := math.Abs(noisy[i]); a > maxAmp {
			maxAmp = a
		}
	}

	return &Result{
		Ideal:          ideal,
		Noisy:          noisy,
		MaxAmplitude:   maxAmp,
		EstimatedT2Us:  e.coherence.Update(cfg),
		SignalPowerDbm: SignalPowerDbm(peakSignalVoltage(cfg, cursor)),
		NoiseTempK:     EffectiveNoiseTemperature(cfg, cursor),
	}
}

// pipelineSample pushes one sample through the stage pipeline, stopping at
// cursor. Stages are strictly ordered; selecting stage N applies every
// effect of stages 0..N. Before the mixer the observable is the in-phase
// branch.
func (e *Engine) pipelineSample(cfg *Config, env, t float64, cursor Stage) float64 {
	if cursor == StageSource {
		return cfg.Source.Amplitude * env
	}

	i, q := ncoSample(e.rng, cfg.Synth, cfg.Source.Amplitude, env, t)
	if cursor == StageAWG {
		return i
	}

	i = Quantize(i, cfg.Quantizer.Bits)
	q = Quantize(q, cfg.Quantizer.Bits)
	if cursor == StageDAC {
		return i
	}

	s := Upconvert(cfg.Mixer, i, q, t)
	if cursor == StageMixer {
		return s
	}

	s = e.roomChain.Process(s)
	if sigma := thermalSigma(cfg.RoomStage.TemperatureK); sigma > 0 {
		s += e.white.Sample() * sigma
	}
	if cfg.RoomStage.InterferenceLevel > 0 {
		s += interferenceSample(e.rng, cfg.RoomStage.InterferenceLevel, t)
	}
	if cursor == StageCableRoom {
		return s
	}

	s = e.cryoChain.Process(s)
	if sigma := thermalSigma(cfg.CryoStage.TemperatureK); sigma > 0 {
		s += e.white.Sample() * sigma
	}
	if cfg.CryoStage.FlickerIntensity > 0 {
		s += e.pink.Sample() * cfg.CryoStage.FlickerIntensity
	}
	if cursor == StageCableCryo {
		return s
	}

	return s * cfg.Qubit.Coupling
}

func thermalSigma(tempK float64) float64 {
	if tempK <= 0 {
		return 0
	}
	return ThermalNoiseCoeff * math.Sqrt(tempK)
}
