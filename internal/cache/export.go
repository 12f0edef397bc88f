// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/pkg/types"
)

// ExportEntry holds one cached record with its fetch timestamp for export.
type ExportEntry struct {
	MaterialID string       `json:"material_id" yaml:"material_id"`
	Record     types.Record `json:"record" yaml:"record"`
	FetchedAt  time.Time    `json:"fetched_at" yaml:"fetched_at"`
}

const exportLimit = 100000

// ExportYAML writes every cached record to cacheDir/index/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.cacheDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes every cached record to cacheDir/index/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	entries, err := s.exportEntries(ctx)
	if err != nil {
		return err
	}

	path := filepath.Join(s.cacheDir, indexDir, "export.json")
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT material_id, properties, fetched_at FROM records
		 ORDER BY material_id LIMIT ?`, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var e ExportEntry
		var propsJSON, fetchedAt string
		if err := rows.Scan(&e.MaterialID, &propsJSON, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		if err := json.Unmarshal([]byte(propsJSON), &e.Record); err != nil {
			return nil, fmt.Errorf("decoding record %s: %w", e.MaterialID, err)
		}
		if t, parseErr := time.Parse(time.RFC3339, fetchedAt); parseErr == nil {
			e.FetchedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
