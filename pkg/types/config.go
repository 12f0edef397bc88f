// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "matex/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CatalogConfig holds settings for the remote materials catalog client.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline"`

	// Endpoint is the base URL of the catalog REST service. Empty selects
	// the built-in default.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// APIKey authenticates requests. Resolved from flag, config file,
	// .secrets/materials-api-key, or the MATEX_API_KEY environment variable.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults caps the number of records returned per query (default 500).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// CacheConfig holds settings for the local results cache.
type CacheConfig struct {
	// CacheDir is the base directory for the cache (contains index/).
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// MaxResults is the default maximum number of listed entries (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// MatcherConfig holds tolerances and flags for structure comparison.
type MatcherConfig struct {
	// LengthTol is the relative tolerance on lattice vector lengths (default 0.2).
	LengthTol float64 `json:"length_tol" yaml:"length_tol"`

	// SiteTol is the site position tolerance as a fraction of the mean free
	// length per atom (default 0.3).
	SiteTol float64 `json:"site_tol" yaml:"site_tol"`

	// AngleTol is the tolerance on cell angles in degrees (default 5).
	AngleTol float64 `json:"angle_tol" yaml:"angle_tol"`

	// PrimitiveCell reduces both structures to primitive cells before comparing.
	PrimitiveCell bool `json:"primitive_cell" yaml:"primitive_cell"`

	// ScaleVolume normalizes both lattices to the same volume per atom.
	ScaleVolume bool `json:"scale_volume" yaml:"scale_volume"`

	// AttemptSupercell allows matching when one cell is an integer multiple
	// of the other.
	AttemptSupercell bool `json:"attempt_supercell" yaml:"attempt_supercell"`

	// IgnoreSpecies compares site geometry only, disregarding which species
	// occupies each site.
	IgnoreSpecies bool `json:"ignore_species" yaml:"ignore_species"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Matcher MatcherConfig `json:"matcher" yaml:"matcher"`
}
