package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(seed int64) *Engine {
	return NewEngine(rand.New(rand.NewSource(seed)))
}

// cleanConfig is a pipeline with no noise, no imbalance, unity chains and
// a fine enough DAC that quantization error is negligible.
func cleanConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Shape:     EnvelopeGaussian,
			Amplitude: 1,
			WidthNs:   20,
			SigmaNs:   5,
			PeriodNs:  51.2,
		},
		Synth:     SynthConfig{FrequencyGHz: 0.25},
		Quantizer: QuantizerConfig{Bits: 24},
		Mixer:     MixerConfig{LOFrequencyGHz: 4.75, AmpImbalance: 1},
		Qubit:     QubitConfig{Coupling: 1, T1Us: 30},
	}
}

func TestRunBufferLengths(t *testing.T) {
	e := newTestEngine(1)
	for _, cursor := range []Stage{StageSource, StageDAC, StageQubit} {
		res := e.Run(DefaultConfig(), 0, cursor)
		require.Len(t, res.Ideal, BufferSize)
		require.Len(t, res.Noisy, BufferSize)
	}
}

func TestRunNoiselessMatchesIdeal(t *testing.T) {
	e := newTestEngine(1)
	res := e.Run(cleanConfig(), 0, StageQubit)

	for i := range res.Ideal {
		require.InDelta(t, res.Ideal[i], res.Noisy[i], 1e-6, "sample %d", i)
	}
}

func TestRunDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestEngine(99).Run(cfg, 123.4, StageQubit)
	b := newTestEngine(99).Run(cfg, 123.4, StageQubit)

	require.Equal(t, a.Noisy, b.Noisy)
	require.Equal(t, a.Ideal, b.Ideal)
	require.Equal(t, a.MaxAmplitude, b.MaxAmplitude)
}

func TestRunAttenuatorScalesPeak(t *testing.T) {
	base := cleanConfig()
	res0 := newTestEngine(1).Run(base, 0, StageQubit)

	att := cleanConfig()
	att.RoomStage.Components = []ChainComponent{
		{ID: "a", Kind: KindAttenuator, Value: 20},
	}
	res1 := newTestEngine(1).Run(att, 0, StageQubit)

	require.InDelta(t, 0.1, res1.MaxAmplitude/res0.MaxAmplitude, 1e-4)
}

func TestRunSourceStageIsEnvelope(t *testing.T) {
	cfg := cleanConfig()
	e := newTestEngine(1)
	res := e.Run(cfg, 0, StageSource)

	for i := range res.Noisy {
		tm := float64(i) * SampleIntervalNs
		require.InDelta(t, cfg.Source.Amplitude*Envelope(cfg.Source, tm), res.Noisy[i], 1e-12)
	}
}

func TestRunIdealIgnoresCursor(t *testing.T) {
	cfg := cleanConfig()
	a := newTestEngine(1).Run(cfg, 0, StageSource)
	b := newTestEngine(1).Run(cfg, 0, StageQubit)
	require.Equal(t, a.Ideal, b.Ideal)
}

func TestRunFrozenTimestampRecompute(t *testing.T) {
	// While paused the driver re-runs the engine at the same timestamp
	// after a config change; the noiseless pipeline must be repeatable.
	cfg := cleanConfig()
	e := newTestEngine(1)

	a := e.Run(cfg, 500.0, StageMixer)
	b := e.Run(cfg, 500.0, StageMixer)
	require.Equal(t, a.Noisy, b.Noisy)
}

func TestRunCursorClamped(t *testing.T) {
	e := newTestEngine(1)
	a := e.Run(cleanConfig(), 0, Stage(42))
	b := newTestEngine(1).Run(cleanConfig(), 0, StageQubit)
	require.Equal(t, b.Noisy, a.Noisy)
}

func TestRunMaxAmplitude(t *testing.T) {
	res := newTestEngine(1).Run(cleanConfig(), 0, StageQubit)
	want := 0.0
	for i := range res.Ideal {
		want = math.Max(want, math.Abs(res.Ideal[i]))
		want = math.Max(want, math.Abs(res.Noisy[i]))
	}
	assert.Equal(t, want, res.MaxAmplitude)
}

func TestRunMetricsAtCursor(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(1)

	pre := e.Run(cfg, 0, StageMixer)
	assert.Equal(t, 0.0, pre.NoiseTempK, "undefined before the room stage")

	post := e.Run(cfg, 0, StageQubit)
	assert.Greater(t, post.NoiseTempK, 0.0)
	assert.Greater(t, post.EstimatedT2Us, 0.0)
	assert.LessOrEqual(t, post.EstimatedT2Us, 2*cfg.Qubit.T1Us)
	assert.GreaterOrEqual(t, post.SignalPowerDbm, MinSignalPowerDbm)
}

func TestRunNoisyDivergesWithNoise(t *testing.T) {
	cfg := cleanConfig()
	cfg.RoomStage.TemperatureK = 290
	cfg.Synth.PhaseNoise = 0.05

	res := newTestEngine(1).Run(cfg, 0, StageQubit)

	diff := 0.0
	for i := range res.Ideal {
		diff += math.Abs(res.Ideal[i] - res.Noisy[i])
	}
	assert.Greater(t, diff, 0.0)
}

func TestEngineResetState(t *testing.T) {
	cfg := DefaultConfig()
	e := newTestEngine(1)
	e.Run(cfg, 0, StageQubit)

	e.ResetState()
	assert.Equal(t, [7]float64{}, e.pink.taps)
	for _, st := range e.roomChain.states {
		assert.Equal(t, biquad{b0: st.filter.b0, b1: st.filter.b1, b2: st.filter.b2,
			a1: st.filter.a1, a2: st.filter.a2}, st.filter)
	}
}

func TestStageStringAndClamp(t *testing.T) {
	assert.Equal(t, "source", StageSource.String())
	assert.Equal(t, "qubit", StageQubit.String())
	assert.Equal(t, "cable_cryo", StageCableCryo.String())
	assert.Equal(t, StageSource, Stage(-3).Clamp())
	assert.Equal(t, StageQubit, Stage(99).Clamp())
}
