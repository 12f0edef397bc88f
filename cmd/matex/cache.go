// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattersci/matex/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and export the local results cache",
	Long: `Cache manages the local SQLite cache populated by "query --cache" and
"get --cache". Use subcommands to list cached records or export them.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached records",
	RunE:  runCacheList,
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export cached records to cache/index/export.yaml (or .json)",
	RunE:  runCacheExport,
}

func init() {
	cacheListCmd.Flags().Int("max", 0, "maximum number of entries to list")
	cacheExportCmd.Flags().Bool("json", false, "export as JSON instead of YAML")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := cache.NewStore(cacheConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	max, _ := cmd.Flags().GetInt("max")
	entries, err := store.List(context.Background(), max)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	fmt.Printf("%-16s  %-20s  %s\n", "Material", "Fetched", "Properties")
	for _, e := range entries {
		fetched := ""
		if !e.FetchedAt.IsZero() {
			fetched = e.FetchedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("%-16s  %-20s  %v\n", e.MaterialID, fetched, e.Properties)
	}
	fmt.Printf("\n%d entries\n", len(entries))
	return nil
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	store, err := cache.NewStore(cacheConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := store.ExportJSON(context.Background()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Exported cache to index/export.json")
		return nil
	}
	if err := store.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Exported cache to index/export.yaml")
	return nil
}
