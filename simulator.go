package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/qctl/cryosim/simulation"
)

// Simulator drives the simulation engine from the tick loop: it owns the
// monotonic elapsed-time accumulator, the pause flag, the observation
// cursor and the live simulation configuration. The engine itself is only
// ever invoked from Tick, one frame at a time.
type Simulator struct {
	mu sync.Mutex

	engine   *simulation.Engine
	analyzer *simulation.SpectrumAnalyzer
	simCfg   *simulation.Config

	elapsedNs float64
	timeScale float64
	paused    bool
	cursor    simulation.Stage

	// dirty forces a recomputation at the frozen timestamp after a
	// configuration or cursor change while paused.
	dirty bool

	lastResult   *simulation.Result
	lastSpectrum *simulation.SpectrumFrame
}

// NewSimulator creates a simulator around an engine and initial config.
func NewSimulator(engine *simulation.Engine, simCfg *simulation.Config, timeScale float64, paused bool) *Simulator {
	return &Simulator{
		engine:    engine,
		analyzer:  simulation.NewSpectrumAnalyzer(),
		simCfg:    simCfg,
		timeScale: timeScale,
		paused:    paused,
		cursor:    simulation.StageQubit,
		dirty:     true, // compute a first frame immediately
	}
}

// Tick advances simulated time by tickInterval (scaled) and computes the
// next frame. While paused, time is frozen and the previous frame is
// reused unless a configuration change marked the state dirty; the
// spectrum is recomputed every tick regardless.
func (s *Simulator) Tick(tickInterval time.Duration) (*simulation.Result, *simulation.SpectrumFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := s.dirty
	if !s.paused {
		s.elapsedNs += float64(tickInterval.Nanoseconds()) * s.timeScale
		run = true
	}

	if run {
		s.lastResult = s.engine.Run(s.simCfg, s.elapsedNs, s.cursor)
		s.dirty = false
	}
	if s.lastResult != nil {
		center := s.simCfg.Synth.FrequencyGHz + s.simCfg.Mixer.LOFrequencyGHz
		s.lastSpectrum = s.analyzer.Analyze(s.lastResult.Noisy, center)
	}

	return s.lastResult, s.lastSpectrum
}

// SetCursor moves the observation point. Out-of-range values clamp.
func (s *Simulator) SetCursor(stage simulation.Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = stage.Clamp()
	s.dirty = true
}

// SetPaused freezes or resumes the time accumulator.
func (s *Simulator) SetPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = paused
}

// SetTimeScale changes how fast simulated time advances per tick.
func (s *Simulator) SetTimeScale(scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if scale > 0 {
		s.timeScale = scale
	}
}

// Paused reports whether the accumulator is frozen.
func (s *Simulator) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// ElapsedNs returns the accumulated simulated time.
func (s *Simulator) ElapsedNs() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedNs
}

// Cursor returns the current observation stage.
func (s *Simulator) Cursor() simulation.Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetScalar updates a single named configuration field. The recognized
// names mirror the YAML paths of the simulation config.
func (s *Simulator) SetScalar(field string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.simCfg
	switch strings.ToLower(field) {
	case "source.amplitude":
		cfg.Source.Amplitude = value
	case "source.width_ns":
		cfg.Source.WidthNs = value
	case "source.rise_ns":
		cfg.Source.RiseNs = value
	case "source.sigma_ns":
		cfg.Source.SigmaNs = value
	case "source.period_ns":
		cfg.Source.PeriodNs = value
	case "synth.frequency_ghz":
		cfg.Synth.FrequencyGHz = value
	case "synth.phase_rad":
		cfg.Synth.PhaseRad = value
	case "synth.phase_noise":
		cfg.Synth.PhaseNoise = value
	case "quantizer.bits":
		cfg.Quantizer.Bits = int(value)
	case "mixer.lo_frequency_ghz":
		cfg.Mixer.LOFrequencyGHz = value
	case "mixer.amp_imbalance":
		cfg.Mixer.AmpImbalance = value
	case "mixer.phase_imbalance_rad":
		cfg.Mixer.PhaseImbalanceRad = value
	case "mixer.lo_leakage":
		cfg.Mixer.LOLeakage = value
	case "room_stage.temperature_k":
		cfg.RoomStage.TemperatureK = value
	case "room_stage.interference_level":
		cfg.RoomStage.InterferenceLevel = value
	case "cryo_stage.temperature_k":
		cfg.CryoStage.TemperatureK = value
	case "cryo_stage.flicker_intensity":
		cfg.CryoStage.FlickerIntensity = value
	case "qubit.coupling":
		cfg.Qubit.Coupling = value
	case "qubit.t1_us":
		cfg.Qubit.T1Us = value
	default:
		return fmt.Errorf("unknown config field: %s", field)
	}

	s.dirty = true
	return nil
}

// SetShape changes the pulse envelope family.
func (s *Simulator) SetShape(shape simulation.EnvelopeShape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simCfg.Source.Shape = shape
	s.dirty = true
}

// ReplaceComponents swaps a stage's ordered component list. The chain
// processor prunes state for removed identities on the next frame.
func (s *Simulator) ReplaceComponents(stage string, components []simulation.ChainComponent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(stage) {
	case "room", "room_stage":
		s.simCfg.RoomStage.Components = components
	case "cryo", "cryo_stage":
		s.simCfg.CryoStage.Components = components
	default:
		return fmt.Errorf("unknown stage: %s", stage)
	}

	s.dirty = true
	return nil
}

// SnapshotConfig returns a copy of the live simulation configuration for
// reporting to clients.
func (s *Simulator) SnapshotConfig() simulation.Config {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := *s.simCfg
	cfg.RoomStage.Components = append([]simulation.ChainComponent(nil), s.simCfg.RoomStage.Components...)
	cfg.CryoStage.Components = append([]simulation.ChainComponent(nil), s.simCfg.CryoStage.Components...)
	return cfg
}
