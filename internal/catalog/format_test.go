// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mattersci/matex/pkg/types"
)

func TestFormatTable(t *testing.T) {
	records := []types.Record{
		{"material_id": "mat-1234", "pretty_formula": "SiO2", "band_gap": 5.61},
		{"material_id": "mat-5678", "pretty_formula": "Si", "band_gap": nil},
	}

	var buf bytes.Buffer
	FormatTable(records, []string{"pretty_formula", "band_gap"}, &buf)
	out := buf.String()

	for _, want := range []string{"material_id", "pretty_formula", "band_gap", "mat-1234", "SiO2", "5.6100", "2 records"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	// Absent values render as a dash.
	if !strings.Contains(out, "-") {
		t.Errorf("table output missing placeholder for nil value:\n%s", out)
	}
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, []string{"band_gap"}, &buf)
	if !strings.Contains(buf.String(), "No records found.") {
		t.Errorf("empty table output = %q", buf.String())
	}
}

func TestFormatJSON(t *testing.T) {
	records := []types.Record{{"material_id": "mat-1234", "band_gap": 5.61}}

	var buf bytes.Buffer
	if err := FormatJSON(records, &buf); err != nil {
		t.Fatalf("FormatJSON() error: %v", err)
	}

	var decoded []types.Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID() != "mat-1234" {
		t.Errorf("decoded = %v", decoded)
	}
}
