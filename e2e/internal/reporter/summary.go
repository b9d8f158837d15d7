package reporter

import (
	"encoding/json"
	"fmt"

	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

// SaveSummary saves a JSON summary of test results
func SaveSummary(result *scenario.TestResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	return writeReport(filename, data)
}
