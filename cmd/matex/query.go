// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattersci/matex/internal/cache"
	"github.com/mattersci/matex/internal/catalog"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the catalog with criteria and a property projection",
	Long: `Query selects catalog records matching conjunctive criteria built from
the filter flags and returns them projected to the requested properties.
Results print as a table by default, or as JSON with --json.

A query can be saved with --save and replayed offline with --load, and
fetched records can be upserted into the local cache with --cache.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("elements", "", "elements the material must contain (comma-separated)")
	queryCmd.Flags().String("any-elements", "", "elements of which at least one must be present (comma-separated)")
	queryCmd.Flags().Int("nelements", 0, "exact number of distinct elements")
	queryCmd.Flags().String("spacegroup", "", "space group symbol (e.g. Fd-3m)")
	queryCmd.Flags().String("crystal-system", "", "crystal system (e.g. cubic, tetragonal)")
	queryCmd.Flags().Float64("band-gap-min", 0, "minimum band gap in eV (inclusive)")
	queryCmd.Flags().Float64("band-gap-max", 0, "maximum band gap in eV (inclusive)")
	queryCmd.Flags().String("properties", "material_id,pretty_formula", "properties to request (comma-separated)")
	queryCmd.Flags().Int("max-results", 0, "maximum number of records to return")
	queryCmd.Flags().Bool("json", false, "output records as JSON")
	queryCmd.Flags().String("save", "", "save the query and results to a YAML file")
	queryCmd.Flags().String("load", "", "replay a saved query file instead of querying the catalog")
	queryCmd.Flags().Bool("cache", false, "upsert fetched records into the local cache")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	properties := splitList(mustString(cmd, "properties"))

	// Offline replay of a saved query file.
	if load := mustString(cmd, "load"); load != "" {
		qf, err := catalog.ReadQueryFile(load)
		if err != nil {
			return err
		}
		if asJSON {
			return catalog.FormatJSON(qf.Results, os.Stdout)
		}
		catalog.FormatTable(qf.Results, qf.Properties, os.Stdout)
		return nil
	}

	if len(properties) == 0 {
		return fmt.Errorf("no properties requested")
	}

	criteria, err := buildCriteria(cmd)
	if err != nil {
		return err
	}

	client := catalog.NewClient(catalogConfig(cmd), nil)
	defer client.Close()

	records, err := client.Query(context.Background(), criteria, properties)
	if err != nil {
		return err
	}

	if save := mustString(cmd, "save"); save != "" {
		if err := catalog.WriteQueryFile(save, criteria, properties, records); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query to %s\n", save)
	}

	if useCache, _ := cmd.Flags().GetBool("cache"); useCache {
		store, err := cache.NewStore(cacheConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		stored, err := store.PutRecords(context.Background(), records)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Cached %d records\n", stored)
	}

	if asJSON {
		return catalog.FormatJSON(records, os.Stdout)
	}
	catalog.FormatTable(records, properties, os.Stdout)
	return nil
}

// buildCriteria translates the filter flags into a criteria set.
func buildCriteria(cmd *cobra.Command) (*catalog.Criteria, error) {
	criteria := catalog.NewCriteria()

	if v := mustString(cmd, "elements"); v != "" {
		criteria.All("elements", toAny(splitList(v))...)
	}
	if v := mustString(cmd, "any-elements"); v != "" {
		criteria.In("elements", toAny(splitList(v))...)
	}
	if n, _ := cmd.Flags().GetInt("nelements"); n > 0 {
		criteria.Eq("nelements", n)
	}
	if v := mustString(cmd, "spacegroup"); v != "" {
		criteria.Eq("spacegroup.symbol", v)
	}
	if v := mustString(cmd, "crystal-system"); v != "" {
		criteria.Eq("spacegroup.crystal_system", v)
	}
	if cmd.Flags().Changed("band-gap-min") {
		v, _ := cmd.Flags().GetFloat64("band-gap-min")
		criteria.Gte("band_gap", v)
	}
	if cmd.Flags().Changed("band-gap-max") {
		v, _ := cmd.Flags().GetFloat64("band-gap-max")
		criteria.Lte("band_gap", v)
	}

	return criteria, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
