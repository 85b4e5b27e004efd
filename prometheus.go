package main

import (
	"context"
	"log"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/qctl/cryosim/simulation"
)

// PrometheusMetrics holds all Prometheus metric collectors for the
// simulation engine and the process itself
type PrometheusMetrics struct {
	// Engine metrics
	signalPowerDbm prometheus.Gauge // Output signal power at the cursor
	noiseTempK     prometheus.Gauge // Cascaded effective noise temperature
	estimatedT2Us  prometheus.Gauge // Smoothed T2* estimate
	maxAmplitude   prometheus.Gauge // Display-scaling peak amplitude
	stageCursor    prometheus.Gauge // Current observation stage index
	framesTotal    prometheus.Counter
	frameDuration  prometheus.Histogram

	// WebSocket metrics
	connectedClients prometheus.Gauge
	frameBytesTotal  prometheus.Counter

	// Resource metrics
	goroutineCount   prometheus.Gauge
	memoryAllocBytes prometheus.Gauge
	memoryHeapBytes  prometheus.Gauge
	gcPauseSeconds   prometheus.Gauge
	cpuPercent       prometheus.Gauge
	memoryPercent    prometheus.Gauge
}

// NewPrometheusMetrics registers all collectors with the default registry
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		signalPowerDbm: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_signal_power_dbm",
			Help: "Peak signal power at the observation stage in dBm (50 ohm)",
		}),
		noiseTempK: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_noise_temperature_kelvin",
			Help: "Cascaded effective noise temperature at the observation stage",
		}),
		estimatedT2Us: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_estimated_t2_microseconds",
			Help: "Exponentially smoothed T2* coherence estimate",
		}),
		maxAmplitude: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_max_amplitude_volts",
			Help: "Peak absolute amplitude of the last frame",
		}),
		stageCursor: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_stage_cursor",
			Help: "Observation stage index (0=source .. 6=qubit)",
		}),
		framesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cryosim_frames_total",
			Help: "Total simulation frames computed",
		}),
		frameDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "cryosim_frame_duration_seconds",
			Help:    "Engine invocation duration",
			Buckets: prometheus.ExponentialBuckets(1e-5, 2, 12),
		}),
		connectedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_websocket_clients",
			Help: "Currently connected WebSocket clients",
		}),
		frameBytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cryosim_frame_bytes_total",
			Help: "Total frame bytes queued to WebSocket clients",
		}),
		goroutineCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_goroutines",
			Help: "Current number of goroutines",
		}),
		memoryAllocBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_memory_alloc_bytes",
			Help: "Currently allocated heap bytes",
		}),
		memoryHeapBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_memory_heap_bytes",
			Help: "Heap bytes obtained from the OS",
		}),
		gcPauseSeconds: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_gc_pause_seconds",
			Help: "Most recent GC pause duration",
		}),
		cpuPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_cpu_percent",
			Help: "Process host CPU utilization percent",
		}),
		memoryPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "cryosim_memory_percent",
			Help: "Host memory utilization percent",
		}),
	}
}

// UpdateFrame records the metrics of one computed frame
func (pm *PrometheusMetrics) UpdateFrame(result *simulation.Result, cursor simulation.Stage, duration time.Duration) {
	pm.signalPowerDbm.Set(result.SignalPowerDbm)
	pm.noiseTempK.Set(result.NoiseTempK)
	pm.estimatedT2Us.Set(result.EstimatedT2Us)
	pm.maxAmplitude.Set(result.MaxAmplitude)
	pm.stageCursor.Set(float64(cursor))
	pm.framesTotal.Inc()
	pm.frameDuration.Observe(duration.Seconds())
}

// SetConnectedClients updates the WebSocket client gauge
func (pm *PrometheusMetrics) SetConnectedClients(n int) {
	pm.connectedClients.Set(float64(n))
}

// AddFrameBytes accumulates outbound frame bytes
func (pm *PrometheusMetrics) AddFrameBytes(n int) {
	pm.frameBytesTotal.Add(float64(n))
}

// StartResourceCollector samples runtime and host resource usage every 15
// seconds until ctx is cancelled
func (pm *PrometheusMetrics) StartResourceCollector(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.collectResources()
			}
		}
	}()
}

func (pm *PrometheusMetrics) collectResources() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	pm.goroutineCount.Set(float64(runtime.NumGoroutine()))
	pm.memoryAllocBytes.Set(float64(ms.Alloc))
	pm.memoryHeapBytes.Set(float64(ms.HeapSys))
	pm.gcPauseSeconds.Set(float64(ms.PauseNs[(ms.NumGC+255)%256]) / 1e9)

	// Host-level metrics via gopsutil; failures are logged once per cycle
	// and otherwise ignored.
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		pm.cpuPercent.Set(percents[0])
	} else if err != nil {
		log.Printf("Metrics: cpu sample failed: %v", err)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		pm.memoryPercent.Set(vm.UsedPercent)
	} else {
		log.Printf("Metrics: memory sample failed: %v", err)
	}
}
