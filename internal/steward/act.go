package steward

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Actor executes decisions via the control API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends the request for d. ActionNone is a no-op.
func (a *Actor) Act(ctx context.Context, d Decision) error {
	var (
		path string
		body any
	)
	switch d.Action {
	case ActionNone:
		return nil
	case ActionPublish:
		path = "/api/v1/projects/" + d.Target + "/publish"
	case ActionScrap:
		path = "/api/v1/projects/" + d.Target + "/fail"
	case ActionRetire:
		path = "/api/v1/products/" + d.Target + "/archive"
	case ActionSlot:
		path = "/api/v1/slot"
		body = map[string]string{"pillar": string(d.Pillar)}
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}
	return a.post(ctx, path, body)
}

func (a *Actor) post(ctx context.Context, path string, body any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("marshal %s: %w", path, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}
	return nil
}
