// pkg/network/client.go
package network

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/opd-ai/go-vesselsim/pkg/config"
	"github.com/opd-ai/go-vesselsim/pkg/entity"
	"github.com/opd-ai/go-vesselsim/pkg/stats"
)

// ErrVesselNotFound is returned by SetTarget for an unregistered identifier.
var ErrVesselNotFound = errors.New("vessel not found")

// Client talks to a simulation server over HTTP. Requests run through a
// circuit breaker so a dead server fails fast instead of hanging callers.
type Client struct {
	baseURL string
	http    *http.Client
	svc     *BreakerService
}

// NewClient creates a client for the server at baseURL (e.g.
// "http://localhost:4590").
func NewClient(baseURL string, envConfig *config.EnvironmentConfig) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: envConfig.ReadTimeout + envConfig.WriteTimeout,
		},
		svc: NewBreakerService(envConfig),
	}
}

// ListVessels fetches a snapshot of the whole fleet.
func (c *Client) ListVessels(ctx context.Context) ([]entity.VesselState, error) {
	var states []entity.VesselState
	err := c.svc.Execute(ctx, func() error {
		return c.getJSON(ctx, "/vessels", &states)
	})
	return states, err
}

// RegisterVessel registers a vessel and returns its initial state as the
// server recorded it. Registering an identifier that already exists is not
// an error: the server preserves the existing vessel and returns it.
func (c *Client) RegisterVessel(ctx context.Context, req RegisterVesselRequest) (entity.VesselState, error) {
	var state entity.VesselState
	err := c.svc.Execute(ctx, func() error {
		body, err := json.Marshal(req)
		if err != nil {
			return err
		}
		resp, err := c.do(ctx, http.MethodPost, "/vessels", body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
			return httpError(resp)
		}
		return json.NewDecoder(resp.Body).Decode(&state)
	})
	return state, err
}

// SetTarget reassigns a vessel's target point. Returns ErrVesselNotFound
// (wrapped) when the identifier is not registered.
func (c *Client) SetTarget(ctx context.Context, id string, x, y float64) error {
	return c.svc.Execute(ctx, func() error {
		body, err := json.Marshal(SetTargetRequest{X: x, Y: y})
		if err != nil {
			return err
		}
		resp, err := c.do(ctx, http.MethodPost, "/vessels/"+id+"/target", body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusOK:
			return nil
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrVesselNotFound, id)
		default:
			return httpError(resp)
		}
	})
}

// FleetSummary fetches aggregated fleet statistics.
func (c *Client) FleetSummary(ctx context.Context) (stats.Summary, error) {
	var summary stats.Summary
	err := c.svc.Execute(ctx, func() error {
		return c.getJSON(ctx, "/fleet/summary", &summary)
	})
	return summary, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

func httpError(resp *http.Response) error {
	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, er.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
