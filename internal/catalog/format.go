// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattersci/matex/pkg/types"
)

const columnWidth = 24

// FormatTable writes records as a human-readable table to w, one column per
// requested property with the identifier first.
func FormatTable(records []types.Record, properties []string, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	columns := []string{types.IDProperty}
	for _, p := range properties {
		if p != types.IDProperty {
			columns = append(columns, p)
		}
	}

	for _, col := range columns {
		fmt.Fprintf(w, "%-*s  ", columnWidth, truncate(col, columnWidth))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", (columnWidth+2)*len(columns)))

	for _, rec := range records {
		for _, col := range columns {
			fmt.Fprintf(w, "%-*s  ", columnWidth, truncate(formatValue(rec[col]), columnWidth))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.Record, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "-"
	case string:
		return val
	case float64:
		// Whole numbers print without a trailing ".000000".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%.4f", val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
