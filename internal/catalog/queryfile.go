// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/pkg/types"
)

// QueryFile is the on-disk representation of a catalog query and its
// results. A query can be saved to a file and reloaded later without
// re-querying the service.
type QueryFile struct {
	Criteria   map[string]any `yaml:"criteria"`
	Properties []string       `yaml:"properties"`
	Results    []types.Record `yaml:"results"`
	Summary    QuerySummary   `yaml:"summary"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total     int       `yaml:"total"`
	Timestamp time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the criteria document, property projection, and
// results to a YAML file.
func WriteQueryFile(path string, criteria *Criteria, properties []string, results []types.Record) error {
	doc, err := criteria.Document()
	if err != nil {
		return fmt.Errorf("building criteria document: %w", err)
	}

	qf := QueryFile{
		Criteria:   doc,
		Properties: properties,
		Results:    results,
		Summary: QuerySummary{
			Total:     len(results),
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}
