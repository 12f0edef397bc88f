// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/mattersci/matex/internal/cache"
	"github.com/mattersci/matex/internal/catalog"
	"github.com/mattersci/matex/pkg/types"
)

var getCmd = &cobra.Command{
	Use:   "get <material-id>",
	Short: "Fetch one catalog record or its full crystal structure",
	Long: `Get looks up a single material by identifier. By default it fetches the
record projected to --properties; with --structure it fetches the full
computed crystal structure as YAML, written to stdout or --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().String("properties", "material_id,pretty_formula,band_gap", "properties to request (comma-separated)")
	getCmd.Flags().Bool("structure", false, "fetch the full crystal structure instead of a record")
	getCmd.Flags().String("out", "", "write structure YAML to this file instead of stdout")
	getCmd.Flags().Bool("json", false, "output the record as JSON")
	getCmd.Flags().Int("max-results", 0, "maximum number of records to return")
	getCmd.Flags().Bool("cache", false, "upsert the fetched record or structure into the local cache")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	id := args[0]
	wantStructure, _ := cmd.Flags().GetBool("structure")
	useCache, _ := cmd.Flags().GetBool("cache")

	client := catalog.NewClient(catalogConfig(cmd), nil)
	defer client.Close()

	if wantStructure {
		structure, err := client.GetStructure(context.Background(), id)
		if err != nil {
			return err
		}
		if useCache {
			if err := cacheStructure(structure); err != nil {
				return err
			}
		}
		return writeStructure(structure, mustString(cmd, "out"))
	}

	properties := splitList(mustString(cmd, "properties"))
	record, err := client.GetRecord(context.Background(), id, properties)
	if err != nil {
		return err
	}

	if useCache {
		store, err := cache.NewStore(cacheConfig())
		if err != nil {
			return err
		}
		defer store.Close()
		if _, err := store.PutRecords(context.Background(), []types.Record{record}); err != nil {
			return err
		}
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return catalog.FormatJSON([]types.Record{record}, os.Stdout)
	}
	catalog.FormatTable([]types.Record{record}, properties, os.Stdout)
	return nil
}

func cacheStructure(structure types.Structure) error {
	store, err := cache.NewStore(cacheConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.PutStructure(context.Background(), structure)
}

func writeStructure(structure types.Structure, out string) error {
	data, err := yaml.Marshal(&structure)
	if err != nil {
		return fmt.Errorf("marshaling structure: %w", err)
	}
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote structure to %s\n", out)
	return nil
}
