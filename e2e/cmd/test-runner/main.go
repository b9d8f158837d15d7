package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/foliolab/foliage-platform/e2e/internal/executor"
	"github.com/foliolab/foliage-platform/e2e/internal/reporter"
	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

func main() {
	scenarioPath := flag.String("scenario", "", "Scenario YAML file, or a directory to run every scenario in it (required)")
	mqttBroker := flag.String("mqtt-broker", "mqtt://mosquitto:1883", "MQTT broker URL")
	redisAddr := flag.String("redis-addr", "redis:6379", "Redis address")
	postgresConn := flag.String("postgres", "", "Postgres connection string (enables postgres expectations)")
	outputDir := flag.String("output-dir", "./test-output", "Output directory for test artifacts")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	flag.Parse()

	if *scenarioPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --scenario is required\n")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New(os.Stdout, "", log.Ltime)
	if !*verbose {
		logger.SetOutput(os.Stderr)
	}

	paths, err := collectScenarios(*scenarioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve scenarios: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "No scenario files found in %s\n", *scenarioPath)
		os.Exit(1)
	}

	failed := 0
	for _, path := range paths {
		if !runScenario(path, *mqttBroker, *redisAddr, *postgresConn, *outputDir, logger) {
			failed++
		}
	}

	if len(paths) > 1 {
		logger.Printf("Suite finished: %d/%d scenarios passed", len(paths)-failed, len(paths))
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// collectScenarios expands a path into the scenario files to run. A
// directory runs every YAML file in it, sorted by name so suites
// execute in a stable order.
func collectScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(path, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	return paths, nil
}

// runScenario executes one scenario end to end and writes its
// artifacts. Returns whether every expectation passed. Each scenario
// gets a fresh runner so a leaked connection cannot bleed into the
// next one.
func runScenario(path, mqttBroker, redisAddr, postgresConn, outputDir string, logger *log.Logger) bool {
	logger.Printf("Loading scenario from %s", path)
	scen, err := scenario.LoadScenario(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load scenario %s: %v\n", path, err)
		return false
	}

	runner := executor.NewRunner(mqttBroker, redisAddr, postgresConn, logger)

	result, timelineEvents, err := runner.Run(context.Background(), scen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scenario %s failed to execute: %v\n", path, err)
		return false
	}

	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	timeline := reporter.GenerateTimeline(result, timelineEvents)
	fmt.Println(timeline)

	timelinePath := filepath.Join(outputDir, "timelines", name+".txt")
	if err := reporter.SaveTimeline(timeline, timelinePath); err != nil {
		logger.Printf("Warning: Failed to save timeline: %v", err)
	} else {
		logger.Printf("Timeline saved to %s", timelinePath)
	}

	capturePath := filepath.Join(outputDir, "captures", name+".json")
	if err := runner.SaveCapture(capturePath); err != nil {
		logger.Printf("Warning: Failed to save capture: %v", err)
	} else {
		logger.Printf("MQTT capture saved to %s", capturePath)
	}

	summaryPath := filepath.Join(outputDir, "summaries", name+".json")
	if err := reporter.SaveSummary(result, summaryPath); err != nil {
		logger.Printf("Warning: Failed to save summary: %v", err)
	} else {
		logger.Printf("Summary saved to %s", summaryPath)
	}

	return result.Passed
}
