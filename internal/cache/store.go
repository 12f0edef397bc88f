// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched catalog records and structures in a local
// SQLite database. The cache is an opt-in layer: the catalog client itself
// stays stateless, and cached rows are snapshots of whatever the service
// returned at fetch time.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "matex.db"
)

// Store manages the cache SQLite database.
type Store struct {
	db         *sql.DB
	cacheDir   string
	maxResults int
}

// NewStore opens or creates the cache database at cacheDir/index/matex.db,
// creating the schema if needed.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.CacheDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		cacheDir:   cfg.CacheDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS records (
			material_id TEXT PRIMARY KEY,
			properties TEXT NOT NULL,
			property_set TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS structures (
			material_id TEXT PRIMARY KEY,
			structure TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_property_set ON records(property_set)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// PutRecords upserts fetched records. A record without an identifier is
// counted as skipped, not an error. Returns the number stored.
func (s *Store) PutRecords(ctx context.Context, records []types.Record) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (material_id, properties, property_set, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(material_id) DO UPDATE SET
			properties=excluded.properties,
			property_set=excluded.property_set,
			fetched_at=excluded.fetched_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	stored := 0
	for _, rec := range records {
		id := rec.ID()
		if id == "" {
			continue
		}
		propsJSON, err := json.Marshal(rec)
		if err != nil {
			return stored, fmt.Errorf("encoding record %s: %w", id, err)
		}
		propertySet := strings.Join(rec.PropertyNames(), ",")
		if _, err := stmt.ExecContext(ctx, id, string(propsJSON), propertySet, now); err != nil {
			return stored, fmt.Errorf("upserting record %s: %w", id, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return stored, fmt.Errorf("committing: %w", err)
	}
	return stored, nil
}

// GetRecord returns a cached record by identifier. The second return value
// reports whether the record was present.
func (s *Store) GetRecord(ctx context.Context, id string) (types.Record, bool, error) {
	var propsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT properties FROM records WHERE material_id = ?`, id,
	).Scan(&propsJSON)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying record %s: %w", id, err)
	}

	var rec types.Record
	if err := json.Unmarshal([]byte(propsJSON), &rec); err != nil {
		return nil, false, fmt.Errorf("decoding cached record %s: %w", id, err)
	}
	return rec, true, nil
}

// PutStructure upserts a fetched structure, serialized as YAML.
func (s *Store) PutStructure(ctx context.Context, structure types.Structure) error {
	if structure.MaterialID == "" {
		return fmt.Errorf("structure has no material identifier")
	}
	data, err := yaml.Marshal(&structure)
	if err != nil {
		return fmt.Errorf("encoding structure %s: %w", structure.MaterialID, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO structures (material_id, structure, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(material_id) DO UPDATE SET
			structure=excluded.structure, fetched_at=excluded.fetched_at`,
		structure.MaterialID, string(data), now)
	if err != nil {
		return fmt.Errorf("upserting structure %s: %w", structure.MaterialID, err)
	}
	return nil
}

// GetStructure returns a cached structure by identifier. The second return
// value reports whether it was present.
func (s *Store) GetStructure(ctx context.Context, id string) (types.Structure, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT structure FROM structures WHERE material_id = ?`, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return types.Structure{}, false, nil
	}
	if err != nil {
		return types.Structure{}, false, fmt.Errorf("querying structure %s: %w", id, err)
	}

	var structure types.Structure
	if err := yaml.Unmarshal([]byte(data), &structure); err != nil {
		return types.Structure{}, false, fmt.Errorf("decoding cached structure %s: %w", id, err)
	}
	return structure, true, nil
}

// Entry summarizes one cached record for listings.
type Entry struct {
	MaterialID string
	Properties []string
	FetchedAt  time.Time
}

// List returns cached record entries ordered by identifier. A limit of zero
// uses the store default.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT material_id, property_set, fetched_at FROM records
		 ORDER BY material_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var propertySet, fetchedAt string
		if err := rows.Scan(&e.MaterialID, &propertySet, &fetchedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if propertySet != "" {
			e.Properties = strings.Split(propertySet, ",")
		}
		if t, parseErr := time.Parse(time.RFC3339, fetchedAt); parseErr == nil {
			e.FetchedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
