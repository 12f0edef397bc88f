// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the matex CLI: query the hosted
// materials catalog, fetch structures, compare them, and manage the local
// results cache.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattersci/matex/internal/secrets"
	"github.com/mattersci/matex/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Store

// apiKey resolves the catalog credential: explicit flag value, then config
// file, then .secrets/materials-api-key, then the MATEX_API_KEY environment
// variable (picked up through viper).
func apiKey(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := viper.GetString("catalog.api_key"); v != "" {
		return v
	}
	if v, ok := loadedSecrets.Get(secrets.MaterialsAPIKey); ok {
		return v
	}
	return viper.GetString("api_key")
}

// catalogConfig assembles the catalog client configuration from flags and
// the loaded config file.
func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	key, _ := cmd.Flags().GetString("api-key")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	cfg := types.CatalogConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("catalog.timeout"),
			UserAgent: "matex/" + version,
		},
		Endpoint:   viper.GetString("catalog.endpoint"),
		APIKey:     apiKey(key),
		MaxResults: maxResults,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}

// cacheConfig assembles the local cache configuration.
func cacheConfig() types.CacheConfig {
	dir := viper.GetString("cache.cache_dir")
	if dir == "" {
		dir = "cache"
	}
	return types.CacheConfig{
		CacheDir:   dir,
		MaxResults: viper.GetInt("cache.max_results"),
	}
}

// rootCmd is the base command for the matex CLI.
var rootCmd = &cobra.Command{
	Use:   "matex",
	Short: "Query and cross-reference a hosted materials catalog",
	Long: `matex queries a hosted materials-science catalog through its REST
interface. Records are selected with conjunctive criteria and projected to a
requested property list; individual materials can be fetched as full crystal
structures and judged for geometric equivalence.

Each operation is a subcommand: query, get, compare, and cache.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Names())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./matex.yaml or ~/.config/matex/config.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "catalog API key (overrides config and .secrets/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("matex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "matex"))
		}
	}

	viper.SetEnvPrefix("MATEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
