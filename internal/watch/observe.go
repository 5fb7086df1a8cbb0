// Package watch observes and steers a running island over its HTTP API,
// and derives deterministic health signals from what it sees.
package watch

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/castaway/internal/engine"
)

// Snapshot holds all data collected during one observation.
type Snapshot struct {
	Status      engine.Status           `json:"status"`
	Environment engine.EnvironmentState `json:"environment"`
	Digest      Digest                  `json:"digest"`
}

// Digest mirrors GET /api/v1/digest.
type Digest struct {
	Seed   int64  `json:"seed"`
	Tick   uint64 `json:"tick"`
	Digest string `json:"digest"`
}

// Observer fetches island state from the API.
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

// Observe fetches status, environment and digest.
func (o *Observer) Observe() (*Snapshot, error) {
	snap := &Snapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/environment", &snap.Environment); err != nil {
		return nil, fmt.Errorf("fetch environment: %w", err)
	}
	d, err := o.Digest()
	if err != nil {
		return nil, err
	}
	snap.Digest = d

	return snap, nil
}

// Digest fetches the remote state digest.
func (o *Observer) Digest() (Digest, error) {
	var d Digest
	if err := o.fetchJSON("/api/v1/digest", &d); err != nil {
		return d, fmt.Errorf("fetch digest: %w", err)
	}
	return d, nil
}

// Ready reports whether the status endpoint answers 200.
func (o *Observer) Ready() bool {
	resp, err := o.HTTPClient.Get(o.BaseURL + "/api/v1/status")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
