package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/foliolab/foliage-platform/e2e/internal/observer"
	"github.com/foliolab/foliage-platform/pkg/mqtt"
)

func main() {
	mqttBroker := flag.String("mqtt-broker", "mqtt://mosquitto:1883", "MQTT broker URL")
	topicFilter := flag.String("topic", mqtt.TopicCanopyAll, "Topic filter to capture")
	outputDir := flag.String("output-dir", "./test-output/captures", "Output directory for captures")
	snapshotInterval := flag.Int("snapshot-interval", 30, "Snapshot interval in seconds")
	flag.Parse()

	logger := log.New(os.Stdout, "", log.Ltime)

	obs := observer.NewObserver(*mqttBroker, *topicFilter, logger)

	logger.Printf("Starting canopy observer...")
	started := time.Now()
	if err := obs.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start observer: %v\n", err)
		os.Exit(1)
	}
	defer obs.Stop()

	logger.Printf("Observer running. Press Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(*snapshotInterval) * time.Second)
	defer ticker.Stop()

	snapshotCount := 0

	for {
		select {
		case <-ticker.C:
			snapshotCount++
			timestamp := time.Now().Format("20060102-150405")
			filename := filepath.Join(*outputDir, fmt.Sprintf("snapshot-%s-%03d.json", timestamp, snapshotCount))

			if err := obs.SaveCapture(filename); err != nil {
				logger.Printf("Warning: Failed to save snapshot: %v", err)
			} else {
				logger.Printf("Snapshot saved: %s (%d messages)", filename, obs.GetMessageCount())
			}

		case <-sigChan:
			logger.Printf("Shutting down...")
			timestamp := time.Now().Format("20060102-150405")
			filename := filepath.Join(*outputDir, fmt.Sprintf("final-%s.json", timestamp))

			if err := obs.SaveCapture(filename); err != nil {
				logger.Printf("Warning: Failed to save final capture: %v", err)
			} else {
				logger.Printf("Final capture saved: %s (%d messages)", filename, obs.GetMessageCount())
			}

			printSummary(obs, started, logger)
			return
		}
	}
}

// printSummary reports per-topic counts and rates for the session.
// The frame topic's rate should sit near the agent's configured
// frame rate; a big gap points at broker or network trouble.
func printSummary(obs *observer.Observer, started time.Time, logger *log.Logger) {
	counts := obs.TopicCounts()
	if len(counts) == 0 {
		logger.Printf("No messages captured")
		return
	}

	topics := make([]string, 0, len(counts))
	for topic := range counts {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	elapsed := time.Since(started).Seconds()
	logger.Printf("Captured traffic by topic:")
	for _, topic := range topics {
		n := counts[topic]
		logger.Printf("  %-44s %7d msgs (%.1f/s)", topic, n, float64(n)/elapsed)
	}
}
