package simulation

import "math"

// SignalPowerDbm converts a peak voltage into dBm assuming a 50 ohm
// load, floored at MinSignalPowerDbm so silence never reaches log(0).
func SignalPowerDbm(vPeak float64) float64 {
	vRms := math.Abs(vPeak) / math.Sqrt2
	p := vRms * vRms / 50
	if p <= 0 {
		return MinSignalPowerDbm
	}
	dbm := 10*math.Log10(p) + 30
	if dbm < MinSignalPowerDbm {
		return MinSignalPowerDbm
	}
	return dbm
}

// cascadeTemperature applies one element of the noise-temperature cascade.
// A lossy element (power gain < 1) at physical temperature tPhys both
// attenuates the incoming noise and adds its own thermal contribution:
//
//	Tout = Tin*G + Tphys*(1-G)
//
// An active element amplifies the incoming noise temperature; its added
// noise is modeled separately in the time-domain path.
func cascadeTemperature(tIn, powerGain, tPhys float64) float64 {
	if powerGain < 1 {
		return tIn*powerGain + tPhys*(1-powerGain)
	}
	return tIn * powerGain
}

// stageOutputTemperature runs the cascade across one stage's components at
// that stage's physical temperature. Filters carry no static gain and are
// neutral here.
func stageOutputTemperature(tIn float64, stage StageConfig) float64 {
	t := tIn
	for _, c := range stage.Components {
		switch c.Kind {
		case KindAttenuator:
			t = cascadeTemperature(t, math.Pow(10, -c.Value/10), stage.TemperatureK)
		case KindAmplifier:
			t = cascadeTemperature(t, math.Pow(10, c.Value/10), stage.TemperatureK)
		}
	}
	return t
}

// EffectiveNoiseTemperature computes the cascaded output noise temperature
// at the observation cursor, fed by the ambient input temperature. Below
// the room-temperature stage the metric is undefined and reported as zero.
func EffectiveNoiseTemperature(cfg *Config, cursor Stage) float64 {
	if cursor < StageCableRoom {
		return 0
	}
	t := stageOutputTemperature(AmbientTemperatureK, cfg.RoomStage)
	if cursor >= StageCableCryo {
		t = stageOutputTemperature(t, cfg.CryoStage)
	}
	return t
}

// peakSignalVoltage propagates the configured drive amplitude through every
// gain stage active at the cursor.
func peakSignalVoltage(cfg *Config, cursor Stage) float64 {
	v := math.Abs(cfg.Source.Amplitude)
	if cursor >= StageCableRoom {
		v *= ChainVoltageGain(cfg.RoomStage.Components)
	}
	if cursor >= StageCableCryo {
		v *= ChainVoltageGain(cfg.CryoStage.Components)
	}
	if cursor >= StageQubit {
		v *= math.Abs(cfg.Qubit.Coupling)
	}
	return v
}
