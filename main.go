package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qctl/cryosim/simulation"
)

// Global debug flag
var DebugMode bool

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	flag.Parse()

	config, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	seed := config.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	engine := simulation.NewEngine(rand.New(rand.NewSource(seed)))
	simulator := NewSimulator(engine, config.Simulation, config.Server.TimeScale, config.Server.StartPaused)

	var metrics *PrometheusMetrics
	if config.Prometheus.Enabled {
		metrics = NewPrometheusMetrics()
	}

	hub := NewWSHub(simulator, metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if metrics != nil {
		metrics.StartResourceCollector(ctx)
	}

	if config.MQTT.Enabled {
		publisher, err := NewMQTTPublisher(&config.MQTT)
		if err != nil {
			log.Fatalf("Failed to start MQTT publisher: %v", err)
		}
		publisher.StartPublisher(ctx)
	}

	tickInterval := time.Duration(config.Server.TickIntervalMs) * time.Millisecond
	go runTickLoop(ctx, simulator, hub, metrics, tickInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		handleConfigAPI(w, r, simulator)
	})
	if config.Prometheus.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:    config.Server.Listen,
		Handler: mux,
	}

	go func() {
		log.Printf("Listening on %s (tick interval %v, seed %d)", config.Server.Listen, tickInterval, seed)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Received %v, shutting down", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}

// runTickLoop invokes the engine once per tick and broadcasts the frame.
// The engine mutates filter and pink-noise state in place, so frames are
// computed strictly sequentially from this single goroutine.
func runTickLoop(ctx context.Context, simulator *Simulator, hub *WSHub, metrics *PrometheusMetrics, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			result, spectrum := simulator.Tick(interval)
			if result == nil {
				continue
			}
			elapsed := time.Since(start)

			if metrics != nil {
				metrics.UpdateFrame(result, simulator.Cursor(), elapsed)
			}
			if DebugMode {
				log.Printf("DEBUG: frame stage=%s power=%.1fdBm T2=%.2fus noiseT=%.3fK in %v",
					simulator.Cursor(), result.SignalPowerDbm, result.EstimatedT2Us,
					result.NoiseTempK, elapsed)
			}

			hub.Broadcast(&FrameMessage{
				Type:      "frame",
				ElapsedNs: simulator.ElapsedNs(),
				Stage:     simulator.Cursor().String(),
				Paused:    simulator.Paused(),
				Result:    result,
				Spectrum:  spectrum,
			})
		}
	}
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleConfigAPI reports the live simulation configuration.
func handleConfigAPI(w http.ResponseWriter, r *http.Request, simulator *Simulator) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cfg := simulator.SnapshotConfig()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		log.Printf("Config API: encode failed: %v", err)
	}
}
