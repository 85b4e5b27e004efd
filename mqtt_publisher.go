package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
)

// MQTTPublisher periodically publishes engine metrics to a broker
type MQTTPublisher struct {
	client mqtt.Client
	config *MQTTConfig
}

// MetricPayload represents one metrics message
type MetricPayload struct {
	Timestamp int64              `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// generateClientID creates a random client ID for the MQTT connection
func generateClientID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "cryosim_" + hex.EncodeToString(bytes)
}

// NewMQTTPublisher connects to the configured broker
func NewMQTTPublisher(config *MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(generateClientID())

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Println("MQTT: Connected to broker")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Printf("MQTT: Connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Printf("MQTT: Successfully connected to broker: %s", config.Broker)

	return &MQTTPublisher{client: client, config: config}, nil
}

// StartPublisher publishes gathered metrics at the configured interval
// until ctx is cancelled
func (mp *MQTTPublisher) StartPublisher(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Duration(mp.config.PublishInterval) * time.Second)
		defer ticker.Stop()

		log.Printf("MQTT: Metrics publisher started with %d second interval", mp.config.PublishInterval)

		mp.publishMetrics()
		for {
			select {
			case <-ctx.Done():
				log.Println("MQTT: Metrics publisher stopped")
				mp.client.Disconnect(250)
				return
			case <-ticker.C:
				mp.publishMetrics()
			}
		}
	}()
}

// publishMetrics gathers the engine gauges from the Prometheus registry
// and publishes them as one JSON payload
func (mp *MQTTPublisher) publishMetrics() {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Printf("MQTT ERROR: Failed to gather Prometheus metrics: %v", err)
		return
	}

	payload := MetricPayload{
		Timestamp: time.Now().Unix(),
		Metrics:   make(map[string]float64),
	}
	for _, family := range families {
		name := family.GetName()
		if len(name) < 8 || name[:8] != "cryosim_" {
			continue
		}
		for _, m := range family.GetMetric() {
			switch {
			case m.GetGauge() != nil:
				payload.Metrics[name] = m.GetGauge().GetValue()
			case m.GetCounter() != nil:
				payload.Metrics[name] = m.GetCounter().GetValue()
			}
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("MQTT ERROR: Failed to marshal metrics payload: %v", err)
		return
	}

	topic := mp.config.TopicPrefix + "/metrics"
	token := mp.client.Publish(topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		log.Printf("MQTT ERROR: Failed to publish to %s: %v", topic, token.Error())
	}
}
