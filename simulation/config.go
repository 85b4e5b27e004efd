package simulation

// Stage identifies a point in the signal path. Stages form a strictly
// ordered pipeline: observing stage N applies the effects of every stage
// up to and including N, in order.
type Stage int

const (
	StageSource Stage = iota // pulse envelope generation
	StageAWG                 // digital I/Q synthesis (NCO)
	StageDAC                 // quantization
	StageMixer               // upconversion to RF
	StageCableRoom           // room-temperature transmission line
	StageCableCryo           // cryogenic transmission line
	StageQubit               // qubit coupling
)

// StageCount is the number of pipeline stages.
const StageCount = int(StageQubit) + 1

func (s Stage) String() string {
	switch s {
	case StageSource:
		return "source"
	case StageAWG:
		return "awg"
	case StageDAC:
		return "dac"
	case StageMixer:
		return "mixer"
	case StageCableRoom:
		return "cable_room"
	case StageCableCryo:
		return "cable_cryo"
	case StageQubit:
		return "qubit"
	default:
		return "unknown"
	}
}

// Clamp returns s limited to the valid stage range.
func (s Stage) Clamp() Stage {
	if s < StageSource {
		return StageSource
	}
	if s > StageQubit {
		return StageQubit
	}
	return s
}

// EnvelopeShape selects the pulse envelope family.
type EnvelopeShape string

const (
	EnvelopeCW       EnvelopeShape = "cw"
	EnvelopeSquare   EnvelopeShape = "square"
	EnvelopeGaussian EnvelopeShape = "gaussian"
	EnvelopeHanning  EnvelopeShape = "hanning"
	EnvelopeHamming  EnvelopeShape = "hamming"
	EnvelopeBlackman EnvelopeShape = "blackman"
)

// ComponentKind is the closed set of transmission-line component types.
// An unrecognized kind passes the signal through unchanged.
type ComponentKind string

const (
	KindAttenuator ComponentKind = "attenuator"
	KindAmplifier  ComponentKind = "amplifier"
	KindLowPass    ComponentKind = "lowpass"
	KindHighPass   ComponentKind = "highpass"
	KindNotch      ComponentKind = "notch"
)

// ChainComponent is one element of a transmission-line stage. Value is in
// dB for attenuators/amplifiers and in GHz (cutoff or center frequency)
// for filters. ID must be unique and stable: it keys the persistent
// filter memory across simulation calls.
type ChainComponent struct {
	ID    string        `yaml:"id" json:"id"`
	Kind  ComponentKind `yaml:"kind" json:"kind"`
	Value float64       `yaml:"value" json:"value"`
}

// SourceConfig describes the pulse generator.
type SourceConfig struct {
	Shape     EnvelopeShape `yaml:"shape" json:"shape"`
	Amplitude float64       `yaml:"amplitude" json:"amplitude"`
	WidthNs   float64       `yaml:"width_ns" json:"width_ns"`
	RiseNs    float64       `yaml:"rise_ns" json:"rise_ns"`
	SigmaNs   float64       `yaml:"sigma_ns" json:"sigma_ns"`
	PeriodNs  float64       `yaml:"period_ns" json:"period_ns"`
}

// SynthConfig describes the digital synthesis stage (NCO).
type SynthConfig struct {
	FrequencyGHz float64 `yaml:"frequency_ghz" json:"frequency_ghz"`
	PhaseRad     float64 `yaml:"phase_rad" json:"phase_rad"`
	// PhaseNoise is the width of the uniform per-sample phase jitter in
	// radians. Zero disables jitter.
	PhaseNoise float64 `yaml:"phase_noise" json:"phase_noise"`
}

// QuantizerConfig describes the DAC.
type QuantizerConfig struct {
	Bits int `yaml:"bits" json:"bits"`
}

// MixerConfig describes the upconverter.
type MixerConfig struct {
	LOFrequencyGHz    float64 `yaml:"lo_frequency_ghz" json:"lo_frequency_ghz"`
	AmpImbalance      float64 `yaml:"amp_imbalance" json:"amp_imbalance"`
	PhaseImbalanceRad float64 `yaml:"phase_imbalance_rad" json:"phase_imbalance_rad"`
	LOLeakage         float64 `yaml:"lo_leakage" json:"lo_leakage"`
}

// StageConfig describes one transmission-line stage.
type StageConfig struct {
	TemperatureK float64 `yaml:"temperature_k" json:"temperature_k"`
	// FlickerIntensity scales 1/f noise injection (cryogenic stage).
	FlickerIntensity float64 `yaml:"flicker_intensity" json:"flicker_intensity"`
	// InterferenceLevel enables hum plus occasional spikes when non-zero
	// (room-temperature stage).
	InterferenceLevel float64          `yaml:"interference_level" json:"interference_level"`
	Components        []ChainComponent `yaml:"components" json:"components"`
}

// QubitConfig describes the device under drive.
type QubitConfig struct {
	Coupling float64 `yaml:"coupling" json:"coupling"`
	T1Us     float64 `yaml:"t1_us" json:"t1_us"`
}

// Config is the full simulation configuration. It is treated as immutable
// for the duration of one Run call; only the external controller mutates
// it between calls.
type Config struct {
	Source    SourceConfig    `yaml:"source" json:"source"`
	Synth     SynthConfig     `yaml:"synth" json:"synth"`
	Quantizer QuantizerConfig `yaml:"quantizer" json:"quantizer"`
	Mixer     MixerConfig     `yaml:"mixer" json:"mixer"`
	RoomStage StageConfig     `yaml:"room_stage" json:"room_stage"`
	CryoStage StageConfig     `yaml:"cryo_stage" json:"cryo_stage"`
	Qubit     QubitConfig     `yaml:"qubit" json:"qubit"`
}

// DefaultConfig returns a representative single-qubit drive setup: a
// 20 ns gaussian pulse on a 0.25 GHz NCO upconverted with a 4.75 GHz LO,
// 20 dB of room attenuation and 40 dB of cryogenic attenuation.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Shape:     EnvelopeGaussian,
			Amplitude: 1.0,
			WidthNs:   20,
			RiseNs:    4,
			SigmaNs:   5,
			PeriodNs:  51.2,
		},
		Synth: SynthConfig{
			FrequencyGHz: 0.25,
			PhaseNoise:   0.002,
		},
		Quantizer: QuantizerConfig{Bits: 14},
		Mixer: MixerConfig{
			LOFrequencyGHz: 4.75,
			AmpImbalance:   1.0,
		},
		RoomStage: StageConfig{
			TemperatureK: 290,
			Components: []ChainComponent{
				{ID: "room-att-1", Kind: KindAttenuator, Value: 20},
				{ID: "room-lpf-1", Kind: KindLowPass, Value: 8},
			},
		},
		CryoStage: StageConfig{
			TemperatureK:     0.02,
			FlickerIntensity: 0.001,
			Components: []ChainComponent{
				{ID: "cryo-att-1", Kind: KindAttenuator, Value: 20},
				{ID: "cryo-att-2", Kind: KindAttenuator, Value: 20},
			},
		},
		Qubit: QubitConfig{
			Coupling: 1.0,
			T1Us:     30,
		},
	}
}
