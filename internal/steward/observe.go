// Package steward plays a served run remotely. It observes the run through
// the public API, decides with a fixed rule set, and acts via the bearer
// protected control endpoints.
package steward

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/game"
)

// errNotFound marks a 404 from the API.
var errNotFound = errors.New("not found")

// RunSnapshot holds all data collected during an observation cycle.
type RunSnapshot struct {
	Status   game.Status      `json:"status"`
	Pending  *engine.Project  `json:"pending,omitempty"`
	Products []engine.Product `json:"products"`
}

// Observer fetches run state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches status, the pending review and the live products.
func (o *Observer) Observe(ctx context.Context) (*RunSnapshot, error) {
	snap := &RunSnapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if snap.Status.ReviewPending {
		var p engine.Project
		switch err := o.fetchJSON(ctx, "/api/v1/review", &p); {
		case err == nil:
			snap.Pending = &p
		case errors.Is(err, errNotFound):
			// Resolved between the two requests.
		default:
			return nil, fmt.Errorf("fetch review: %w", err)
		}
	}
	if err := o.fetchJSON(ctx, "/api/v1/products", &snap.Products); err != nil {
		return nil, fmt.Errorf("fetch products: %w", err)
	}
	return snap, nil
}

// Ready reports whether the status endpoint answers 200.
func (o *Observer) Ready(ctx context.Context) bool {
	var st game.Status
	return o.fetchJSON(ctx, "/api/v1/status", &st) == nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("GET %s: %w", path, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
