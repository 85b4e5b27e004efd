package simulation

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChain() *ChainProcessor {
	return NewChainProcessor(rand.New(rand.NewSource(1)))
}

func TestChainVoltageGain(t *testing.T) {
	// A single 20 dB attenuator is exactly a linear gain of 0.1.
	comps := []ChainComponent{{ID: "a", Kind: KindAttenuator, Value: 20}}
	require.InDelta(t, 0.1, ChainVoltageGain(comps), 1e-15)

	// Attenuation and amplification cancel in dB.
	comps = append(comps, ChainComponent{ID: "b", Kind: KindAmplifier, Value: 20})
	require.InDelta(t, 1.0, ChainVoltageGain(comps), 1e-15)

	// Filters contribute no static gain.
	comps = append(comps, ChainComponent{ID: "c", Kind: KindLowPass, Value: 4})
	require.InDelta(t, 1.0, ChainVoltageGain(comps), 1e-15)
}

func TestChainAttenuatorScaling(t *testing.T) {
	cp := newTestChain()
	comps := []ChainComponent{
		{ID: "a1", Kind: KindAttenuator, Value: 12},
		{ID: "a2", Kind: KindAttenuator, Value: 8},
	}
	cp.Sync(comps)

	// Per-sample application must match the cumulative dB accounting.
	want := math.Pow(10, -20.0/20)
	require.InDelta(t, want, cp.Process(1.0), 1e-12)
	require.InDelta(t, -0.5*want, cp.Process(-0.5), 1e-12)
}

func TestChainUnknownKindPassesThrough(t *testing.T) {
	cp := newTestChain()
	cp.Sync([]ChainComponent{{ID: "x", Kind: "circulator", Value: 3}})
	assert.Equal(t, 0.75, cp.Process(0.75))
}

func TestLowPassDCGain(t *testing.T) {
	cp := newTestChain()
	cp.Sync([]ChainComponent{{ID: "lpf", Kind: KindLowPass, Value: 2}})

	var out float64
	for i := 0; i < 5000; i++ {
		out = cp.Process(1.0)
	}
	require.InDelta(t, 1.0, out, 1e-6, "low-pass passes DC at unity")
}

func TestHighPassBlocksDC(t *testing.T) {
	cp := newTestChain()
	cp.Sync([]ChainComponent{{ID: "hpf", Kind: KindHighPass, Value: 2}})

	var out float64
	for i := 0; i < 5000; i++ {
		out = cp.Process(1.0)
	}
	require.InDelta(t, 0.0, out, 1e-6, "high-pass blocks DC")
}

func TestNotchPassesDC(t *testing.T) {
	cp := newTestChain()
	cp.Sync([]ChainComponent{{ID: "notch", Kind: KindNotch, Value: 5}})

	var out float64
	for i := 0; i < 5000; i++ {
		out = cp.Process(1.0)
	}
	require.InDelta(t, 1.0, out, 1e-6)
}

func TestNotchRejectsCenterFrequency(t *testing.T) {
	cp := newTestChain()
	center := 2.5
	cp.Sync([]ChainComponent{{ID: "notch", Kind: KindNotch, Value: center}})

	// Drive at the notch center and compare steady-state amplitude.
	peak := 0.0
	for i := 0; i < 20000; i++ {
		tm := float64(i) * SampleIntervalNs
		out := cp.Process(math.Sin(2 * math.Pi * center * tm))
		if i > 15000 && math.Abs(out) > peak {
			peak = math.Abs(out)
		}
	}
	assert.Less(t, peak, 0.05, "notch should suppress its center frequency")
}

func TestChainStatePrunedOnRemoval(t *testing.T) {
	cp := newTestChain()
	lpf := []ChainComponent{{ID: "f1", Kind: KindLowPass, Value: 2}}

	impulseResponse := func() []float64 {
		out := make([]float64, 8)
		out[0] = cp.Process(1.0)
		for i := 1; i < len(out); i++ {
			out[i] = cp.Process(0.0)
		}
		return out
	}

	cp.Sync(lpf)
	first := impulseResponse()

	// Remove the component: its identity must be dropped from the arena.
	cp.Sync(nil)
	_, ok := cp.states["f1"]
	require.False(t, ok, "removed identity keeps no state")

	// Re-adding the same identity starts from zero history, so the
	// impulse response repeats exactly.
	cp.Sync(lpf)
	second := impulseResponse()
	require.Equal(t, first, second)
}

func TestChainStatePersistsAcrossSync(t *testing.T) {
	cp := newTestChain()
	lpf := []ChainComponent{{ID: "f1", Kind: KindLowPass, Value: 2}}

	cp.Sync(lpf)
	cp.Process(1.0)
	st := cp.states["f1"]
	x1 := st.filter.x1

	// Re-syncing an unchanged component keeps its filter memory.
	cp.Sync(lpf)
	require.Same(t, st, cp.states["f1"])
	require.Equal(t, x1, cp.states["f1"].filter.x1)
}

func TestChainOrderMatters(t *testing.T) {
	// Attenuator before amplifier-with-noise differs from the reverse
	// order because amplifier noise is injected mid-chain.
	run := func(order []ChainComponent) float64 {
		cp := NewChainProcessor(rand.New(rand.NewSource(77)))
		cp.Sync(order)
		sum := 0.0
		for i := 0; i < 100; i++ {
			sum += cp.Process(1.0)
		}
		return sum
	}

	a := run([]ChainComponent{
		{ID: "att", Kind: KindAttenuator, Value: 20},
		{ID: "amp", Kind: KindAmplifier, Value: 20},
	})
	b := run([]ChainComponent{
		{ID: "amp", Kind: KindAmplifier, Value: 20},
		{ID: "att", Kind: KindAttenuator, Value: 20},
	})
	assert.NotEqual(t, a, b)
}
