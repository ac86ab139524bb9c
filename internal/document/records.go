// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/latex-ocr/pkg/types"
)

// SaveRecords writes the formulas of a run to a YAML sidecar.
func SaveRecords(path string, rec types.RecordsFile) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	return Write(path, string(data))
}

// LoadRecords reads a YAML sidecar written by SaveRecords.
func LoadRecords(path string) (*types.RecordsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	var rec types.RecordsFile
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	for i, f := range rec.Formulas {
		if f.Stem == "" {
			return nil, fmt.Errorf("parsing records: formula %d has no stem", i+1)
		}
	}
	return &rec, nil
}
