package reporter

import (
	"fmt"
	"os"
	"path/filepath"
)

// SaveTimeline saves a timeline report to a file
func SaveTimeline(content string, filename string) error {
	return writeReport(filename, []byte(content))
}

// writeReport writes an artifact, creating the output directory on
// first use.
func writeReport(filename string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
