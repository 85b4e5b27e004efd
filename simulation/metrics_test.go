package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalPowerDbm(t *testing.T) {
	// 1 V peak into 50 ohms: (1/sqrt2)^2/50 = 10 mW = +10 dBm.
	require.InDelta(t, 10.0, SignalPowerDbm(1.0), 1e-9)

	// 0.1 V peak is 20 dB down.
	require.InDelta(t, -10.0, SignalPowerDbm(0.1), 1e-9)

	// Silence floors instead of log(0).
	assert.Equal(t, MinSignalPowerDbm, SignalPowerDbm(0))
	assert.Equal(t, MinSignalPowerDbm, SignalPowerDbm(1e-12))
}

func TestCascadeTemperature(t *testing.T) {
	// Unity gain leaves the input temperature unchanged.
	assert.Equal(t, 123.0, cascadeTemperature(123, 1.0, 300))

	// Total loss drives the output to the physical temperature.
	require.InDelta(t, 300.0, cascadeTemperature(123, 1e-20, 300), 1e-9)

	// 3 dB of loss at 300 K from a 100 K input.
	g := 0.5
	require.InDelta(t, 100*g+300*(1-g), cascadeTemperature(100, g, 300), 1e-12)
}

func TestEffectiveNoiseTemperature(t *testing.T) {
	cfg := DefaultConfig()

	// Undefined before the room-temperature stage.
	for _, s := range []Stage{StageSource, StageAWG, StageDAC, StageMixer} {
		assert.Equal(t, 0.0, EffectiveNoiseTemperature(cfg, s))
	}

	// A heavily attenuated cryogenic stage pulls the cascade toward the
	// cryostat temperature.
	cfg.CryoStage.Components = []ChainComponent{
		{ID: "big", Kind: KindAttenuator, Value: 60},
	}
	tCryo := EffectiveNoiseTemperature(cfg, StageQubit)
	assert.Less(t, tCryo, 1.0)
	assert.Greater(t, tCryo, cfg.CryoStage.TemperatureK-1e-9)

	// Room stage alone: 20 dB at 290 K fed by 290 K ambient stays 290 K.
	cfg2 := DefaultConfig()
	cfg2.RoomStage.Components = []ChainComponent{
		{ID: "a", Kind: KindAttenuator, Value: 20},
	}
	require.InDelta(t, 290.0, EffectiveNoiseTemperature(cfg2, StageCableRoom), 1e-9)
}

func TestPeakSignalVoltage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Source.Amplitude = 1
	cfg.RoomStage.Components = []ChainComponent{
		{ID: "a", Kind: KindAttenuator, Value: 20},
	}
	cfg.CryoStage.Components = nil
	cfg.Qubit.Coupling = 0.5

	assert.Equal(t, 1.0, peakSignalVoltage(cfg, StageMixer))
	require.InDelta(t, 0.1, peakSignalVoltage(cfg, StageCableRoom), 1e-12)
	require.InDelta(t, 0.05, peakSignalVoltage(cfg, StageQubit), 1e-12)
}
