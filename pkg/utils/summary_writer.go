/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: summary_writer.go
Description: Writes run summaries as JSON files. Each file is named after the
time it was written, the kind of run and the tool version.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteSummary writes result as indented JSON into dir and returns the file path.
// The name has the form 2024-06-11_01-30-00.000_induce_v1.0.0.json.
func WriteSummary(dir, kind, version string, result any) (string, error) {
	if kind == "" {
		return "", fmt.Errorf("summary kind is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create summary directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	name := fmt.Sprintf("%s_%s", timestamp, kind)
	if version != "" {
		name += "_v" + version
	}
	path := filepath.Join(dir, name+".json")

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}
