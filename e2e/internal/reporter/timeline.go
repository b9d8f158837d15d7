package reporter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

// TimelineEvent represents a single event in the timeline
type TimelineEvent struct {
	Elapsed     float64
	Layer       string
	Description string
	Success     bool // only meaningful when IsCheck is set
	IsCheck     bool
}

// GenerateTimeline creates a human-readable timeline of test execution
func GenerateTimeline(result *scenario.TestResult, events []TimelineEvent) string {
	var sb strings.Builder

	duration := result.EndTime.Sub(result.StartTime)

	sb.WriteString("╔══════════════════════════════════════════════════════════╗\n")
	sb.WriteString(fmt.Sprintf("║  Scenario: %-46s║\n", truncate(result.Scenario.Name, 46)))
	sb.WriteString(fmt.Sprintf("║  Dataset:  %-46s║\n", truncate(result.Scenario.Setup.Dataset, 46)))
	sb.WriteString(fmt.Sprintf("║  Duration: %-46s║\n", formatDuration(duration)))
	sb.WriteString("╚══════════════════════════════════════════════════════════╝\n\n")

	for _, event := range events {
		icon := "→"
		if event.IsCheck {
			if event.Success {
				icon = "✓"
			} else {
				icon = "✗"
			}
		}

		sb.WriteString(fmt.Sprintf("[%7.2fs] %s %-10s: %s\n",
			event.Elapsed,
			icon,
			event.Layer,
			event.Description,
		))
	}

	sb.WriteString("\n=== Expectations ===\n")

	// Group by layer, layers in sorted order so reruns diff cleanly.
	layerResults := make(map[string][]scenario.ExpectationResult)
	for _, expResult := range result.Expectations {
		layerResults[expResult.Layer] = append(layerResults[expResult.Layer], expResult)
	}
	layers := make([]string, 0, len(layerResults))
	for layer := range layerResults {
		layers = append(layers, layer)
	}
	sort.Strings(layers)

	for _, layer := range layers {
		sb.WriteString(fmt.Sprintf("Layer: %s\n", layer))
		for _, expResult := range layerResults[layer] {
			icon := "✓"
			if !expResult.Passed {
				icon = "✗"
			}

			sb.WriteString(fmt.Sprintf("  %s %s", icon, describeCheck(expResult.Expectation)))

			if !expResult.Passed {
				sb.WriteString(fmt.Sprintf(": %s", expResult.Reason))
			} else if len(expResult.Expectation.Payload) > 0 {
				var conditions []string
				keys := make([]string, 0, len(expResult.Expectation.Payload))
				for key := range expResult.Expectation.Payload {
					keys = append(keys, key)
				}
				sort.Strings(keys)
				for _, key := range keys {
					conditions = append(conditions, fmt.Sprintf("%s=%v", key, expResult.Expectation.Payload[key]))
				}
				sb.WriteString(fmt.Sprintf(": %s", strings.Join(conditions, ", ")))
			}

			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	status := "✓ ALL CHECKS PASSED"
	if result.FailedCount > 0 {
		status = fmt.Sprintf("✗ %d CHECK(S) FAILED", result.FailedCount)
	}

	sb.WriteString("╔══════════════════════════════════════════════════════════╗\n")
	sb.WriteString("║  SUMMARY                                                 ║\n")
	sb.WriteString(fmt.Sprintf("║  Passed: %-48d║\n", result.PassedCount))
	sb.WriteString(fmt.Sprintf("║  Failed: %-48d║\n", result.FailedCount))
	sb.WriteString(fmt.Sprintf("║  Status: %-48s║\n", status))
	sb.WriteString("╚══════════════════════════════════════════════════════════╝\n")

	return sb.String()
}

// describeCheck labels an expectation for the report
func describeCheck(exp scenario.Expectation) string {
	switch {
	case exp.Topic != "":
		return exp.Topic
	case exp.RedisKey != "" && exp.RedisField != "":
		return fmt.Sprintf("redis %s.%s", exp.RedisKey, exp.RedisField)
	case exp.RedisKey != "":
		return fmt.Sprintf("redis %s", exp.RedisKey)
	case exp.PostgresQuery != "":
		return truncate(exp.PostgresQuery, 60)
	default:
		return "(empty)"
	}
}

// formatDuration formats a duration as human-readable string
func formatDuration(d time.Duration) string {
	seconds := d.Seconds()
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}

	minutes := int(seconds / 60)
	remainingSeconds := seconds - float64(minutes*60)
	return fmt.Sprintf("%dm %.1fs", minutes, remainingSeconds)
}

// truncate truncates a string to maxLen characters
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
