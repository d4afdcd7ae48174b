package workerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client is a tiny HTTP client for talking to worker endpoints. One instance
// serves the whole pool; callers pass the worker's base URL per call and bound
// each call with a context deadline.
type Client struct {
	httpClient *http.Client
}

func NewClient() *Client {
	return &Client{httpClient: &http.Client{}}
}

// Status probes a worker's status endpoint. Any non-200 reply is an error so
// callers treat it the same as an unreachable worker.
func (c *Client) Status(ctx context.Context, baseURL string) (StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/status", nil)
	if err != nil {
		return StatusResponse{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusResponse{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return StatusResponse{}, fmt.Errorf("status probe: unexpected status %d", resp.StatusCode)
	}
	var st StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return StatusResponse{}, err
	}
	return st, nil
}

// PredictResult carries a worker's raw reply so callers can pass it through.
type PredictResult struct {
	StatusCode int
	Body       []byte
}

// Predict submits a job to a worker. Transport failures return an error; any
// HTTP reply, success or not, is returned as-is for the caller to interpret.
func (c *Client) Predict(ctx context.Context, baseURL string, req PredictRequest) (*PredictResult, error) {
	b, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/predict", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &PredictResult{StatusCode: resp.StatusCode, Body: body}, nil
}
