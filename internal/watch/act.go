package watch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/castaway/internal/engine"
)

// Actor drives the island through the admin API.
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
			Timeout: 5 * time.Minute, // Large step requests run synchronously
		},
	}
}

// Reset rebuilds the remote island from seed.
func (a *Actor) Reset(seed int64) (engine.Status, error) {
	var st engine.Status
	err := a.post("/api/v1/reset", map[string]int64{"seed": seed}, &st)
	return st, err
}

// Step advances the remote island n ticks.
func (a *Actor) Step(n int) (engine.Status, error) {
	var st engine.Status
	err := a.post("/api/v1/step", map[string]int{"n": n}, &st)
	return st, err
}

// SetSpeed sets the remote wall-time multiplier.
func (a *Actor) SetSpeed(speed float64) error {
	return a.post("/api/v1/speed", map[string]float64{"speed": speed}, nil)
}

func (a *Actor) post(path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	req, err := http.NewRequest(http.MethodPost, a.BaseURL+path, bytes.NewReader(body))
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

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
