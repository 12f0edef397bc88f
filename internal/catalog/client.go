// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog queries the hosted materials catalog: bulk criteria
// queries over property-projected records and single-resource structure
// lookups.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/mattersci/matex/internal/httputil"
	"github.com/mattersci/matex/pkg/types"
)

// defaultEndpoint is the hosted catalog's REST base URL. Declared as a var
// so tests can substitute an httptest server through CatalogConfig.Endpoint
// or by overriding it directly.
var defaultEndpoint = "https://api.materialsmirror.org/rest/v2"

const defaultMaxResults = 500

// Client talks to the materials catalog. Construct with NewClient, issue
// requests, then Close to release the network session. A Client is safe for
// concurrent use, though the demonstrated workflow is sequential.
type Client struct {
	http       *http.Client
	endpoint   string
	apiKey     string
	userAgent  string
	maxResults int

	mu     sync.Mutex
	closed bool
}

// NewClient builds a catalog client from cfg. When httpClient is nil a
// pooled client is constructed; cfg.Timeout then applies to every request.
// The credential is fixed at construction; there is no per-request key.
func NewClient(cfg types.CatalogConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
		httpClient.Timeout = cfg.Timeout
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Client{
		http:       httpClient,
		endpoint:   endpoint,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxResults: maxResults,
	}
}

// Close releases idle connections held by the session. The client must not
// be used after Close; subsequent calls return an error. Close is
// idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.http.CloseIdleConnections()
	return nil
}

// queryRequest is the JSON body of a bulk query.
type queryRequest struct {
	Criteria   *Criteria `json:"criteria"`
	Properties []string  `json:"properties"`
	MaxResults int       `json:"max_results"`
}

// envelope is the catalog's uniform response wrapper.
type envelope struct {
	Valid      bool              `json:"valid_response"`
	Error      string            `json:"error"`
	NumResults int               `json:"num_results"`
	Response   []json.RawMessage `json:"response"`
}

// Query sends criteria and a property projection to the catalog and returns
// the matching records. Each returned record carries exactly the requested
// properties plus the material identifier: properties the server omitted
// are present with a nil value, properties the server volunteered beyond
// the projection are stripped. An empty result set is an empty non-nil
// slice, not an error.
func (c *Client) Query(ctx context.Context, criteria *Criteria, properties []string) ([]types.Record, error) {
	if len(properties) == 0 {
		return nil, fmt.Errorf("catalog: no properties requested")
	}

	body, err := json.Marshal(queryRequest{
		Criteria:   criteria,
		Properties: properties,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: encoding query: %w", err)
	}

	env, err := c.post(ctx, "/query", body)
	if err != nil {
		return nil, err
	}

	records := make([]types.Record, 0, len(env.Response))
	for _, raw := range env.Response {
		var fetched map[string]any
		if err := json.Unmarshal(raw, &fetched); err != nil {
			return nil, fmt.Errorf("catalog: parsing record: %w", err)
		}
		records = append(records, project(fetched, properties))
	}
	return records, nil
}

// GetRecord looks up a single record by material identifier with the given
// property projection. An unknown identifier yields ErrNotFound.
func (c *Client) GetRecord(ctx context.Context, id string, properties []string) (types.Record, error) {
	if id == "" {
		return nil, fmt.Errorf("catalog: empty material identifier")
	}
	records, err := c.Query(ctx, NewCriteria().Eq(types.IDProperty, id), properties)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog: material %s: %w", id, ErrNotFound)
	}
	return records[0], nil
}

// GetStructure fetches the full computed crystal structure for one material.
func (c *Client) GetStructure(ctx context.Context, id string) (types.Structure, error) {
	if id == "" {
		return types.Structure{}, fmt.Errorf("catalog: empty material identifier")
	}

	reqURL := c.endpoint + "/materials/" + url.PathEscape(id) + "/structure"
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return types.Structure{}, fmt.Errorf("catalog: creating request: %w", err)
	}
	env, err := c.send(ctx, req)
	if err != nil {
		return types.Structure{}, err
	}

	if len(env.Response) == 0 {
		return types.Structure{}, fmt.Errorf("catalog: material %s: %w", id, ErrNotFound)
	}

	var s types.Structure
	if err := json.Unmarshal(env.Response[0], &s); err != nil {
		return types.Structure{}, fmt.Errorf("catalog: parsing structure: %w", err)
	}
	if s.MaterialID == "" {
		s.MaterialID = id
	}
	if err := s.Validate(); err != nil {
		return types.Structure{}, fmt.Errorf("catalog: %w", err)
	}
	return s, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*envelope, error) {
	req, err := http.NewRequest(http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catalog: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(ctx, req)
}

// send executes the request and decodes the response envelope, mapping HTTP
// statuses and envelope rejections onto the typed error kinds.
func (c *Client) send(ctx context.Context, req *http.Request) (*envelope, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("catalog: client is closed")
	}
	c.mu.Unlock()

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := httputil.Do(ctx, c.http, req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		httputil.DrainClose(resp)
		return nil, fmt.Errorf("%w (HTTP %d)", ErrAuth, resp.StatusCode)
	case http.StatusNotFound:
		httputil.DrainClose(resp)
		return nil, ErrNotFound
	case http.StatusTooManyRequests:
		retryAfter := httputil.RetryAfter(resp)
		httputil.DrainClose(resp)
		if retryAfter > 0 {
			return nil, fmt.Errorf("%w, retry after %s", ErrRateLimited, retryAfter)
		}
		return nil, ErrRateLimited
	default:
		httputil.DrainClose(resp)
		return nil, fmt.Errorf("catalog: service returned HTTP %d", resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("catalog: parsing response: %w", err)
	}
	if !env.Valid {
		if env.Error == "" {
			env.Error = "no reason given"
		}
		return nil, &QueryError{Message: env.Error}
	}
	return &env, nil
}

// project restricts a fetched record to the requested properties. The
// identifier is always kept; requested properties missing from the server
// payload appear with a nil value so every record carries the same keys.
func project(fetched map[string]any, properties []string) types.Record {
	rec := make(types.Record, len(properties)+1)
	if id, ok := fetched[types.IDProperty]; ok {
		rec[types.IDProperty] = id
	}
	for _, p := range properties {
		rec[p] = fetched[p]
	}
	return rec
}
