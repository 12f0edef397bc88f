// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/pkg/types"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := types.CacheConfig{
		CacheDir:   tmpDir,
		MaxResults: 20,
	}
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	return store, tmpDir
}

func sampleRecords() []types.Record {
	return []types.Record{
		{"material_id": "mat-1234", "pretty_formula": "SiO2", "band_gap": 5.61},
		{"material_id": "mat-5678", "pretty_formula": "Si", "band_gap": 1.12},
	}
}

func sampleStructure() types.Structure {
	return types.Structure{
		MaterialID: "mat-5678",
		Formula:    "Si",
		Lattice: types.Lattice{Matrix: [3][3]float64{
			{5.43, 0, 0},
			{0, 5.43, 0},
			{0, 0, 5.43},
		}},
		Sites: []types.Site{
			{Species: "Si", Frac: [3]float64{0, 0, 0}},
			{Species: "Si", Frac: [3]float64{0.5, 0.5, 0}},
		},
	}
}

// --- records ---

func TestPutAndGetRecord(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	stored, err := store.PutRecords(ctx, sampleRecords())
	if err != nil {
		t.Fatalf("PutRecords() error: %v", err)
	}
	if stored != 2 {
		t.Errorf("stored = %d, want 2", stored)
	}

	rec, ok, err := store.GetRecord(ctx, "mat-1234")
	if err != nil {
		t.Fatalf("GetRecord() error: %v", err)
	}
	if !ok {
		t.Fatal("GetRecord() ok = false, want true")
	}
	if rec.ID() != "mat-1234" {
		t.Errorf("ID() = %q, want mat-1234", rec.ID())
	}
	if gap, err := rec.Float("band_gap"); err != nil || gap != 5.61 {
		t.Errorf("band_gap = %v (%v), want 5.61", gap, err)
	}
}

func TestGetRecordMissing(t *testing.T) {
	store, _ := testStore(t)

	_, ok, err := store.GetRecord(context.Background(), "mat-0000")
	if err != nil {
		t.Fatalf("GetRecord() error: %v", err)
	}
	if ok {
		t.Error("GetRecord() ok = true for a missing record")
	}
}

func TestPutRecordsUpserts(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.PutRecords(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	// Re-fetch with a different projection replaces the cached row.
	updated := []types.Record{{"material_id": "mat-1234", "density": 2.65}}
	if _, err := store.PutRecords(ctx, updated); err != nil {
		t.Fatal(err)
	}

	rec, ok, err := store.GetRecord(ctx, "mat-1234")
	if err != nil || !ok {
		t.Fatalf("GetRecord() = %v, %v", ok, err)
	}
	if rec.Has("band_gap") {
		t.Error("stale property band_gap survived the upsert")
	}
	if !rec.Has("density") {
		t.Error("updated property density missing")
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2 after upsert", len(entries))
	}
}

func TestPutRecordsSkipsMissingID(t *testing.T) {
	store, _ := testStore(t)

	stored, err := store.PutRecords(context.Background(), []types.Record{
		{"pretty_formula": "SiO2"},
		{"material_id": "mat-1234", "pretty_formula": "SiO2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if stored != 1 {
		t.Errorf("stored = %d, want 1", stored)
	}
}

// --- structures ---

func TestPutAndGetStructure(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if err := store.PutStructure(ctx, sampleStructure()); err != nil {
		t.Fatalf("PutStructure() error: %v", err)
	}

	s, ok, err := store.GetStructure(ctx, "mat-5678")
	if err != nil {
		t.Fatalf("GetStructure() error: %v", err)
	}
	if !ok {
		t.Fatal("GetStructure() ok = false")
	}
	if s.NumSites() != 2 || s.Formula != "Si" {
		t.Errorf("structure = %+v", s)
	}
	if s.Lattice.Matrix[0][0] != 5.43 {
		t.Errorf("lattice a = %f, want 5.43", s.Lattice.Matrix[0][0])
	}
}

func TestPutStructureRequiresID(t *testing.T) {
	store, _ := testStore(t)
	if err := store.PutStructure(context.Background(), types.Structure{}); err == nil {
		t.Error("PutStructure() without an identifier should fail")
	}
}

// --- listing and export ---

func TestList(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	if _, err := store.PutRecords(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	// Ordered by identifier.
	if entries[0].MaterialID != "mat-1234" || entries[1].MaterialID != "mat-5678" {
		t.Errorf("entries = %v", entries)
	}
	if entries[0].FetchedAt.IsZero() {
		t.Error("FetchedAt is zero")
	}
	if len(entries[0].Properties) == 0 {
		t.Error("Properties is empty")
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}

func TestExportYAML(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()

	if _, err := store.PutRecords(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.ExportYAML(ctx); err != nil {
		t.Fatalf("ExportYAML() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "index", "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		t.Fatalf("export is not valid YAML: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].MaterialID != "mat-1234" {
		t.Errorf("entries[0].MaterialID = %q", entries[0].MaterialID)
	}
	if entries[0].Record.ID() != "mat-1234" {
		t.Errorf("entries[0].Record = %v", entries[0].Record)
	}
}

func TestExportJSON(t *testing.T) {
	store, tmpDir := testStore(t)
	ctx := context.Background()

	if _, err := store.PutRecords(ctx, sampleRecords()); err != nil {
		t.Fatal(err)
	}
	if err := store.ExportJSON(ctx); err != nil {
		t.Fatalf("ExportJSON() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "index", "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var entries []ExportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
}
