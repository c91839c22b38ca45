// Package analysis calls the external risk analysis service.
//
// The service inspects project data we do not hold ourselves (weather
// forecasts, permit databases) and returns scored risk assessments. Every
// call is bounded by a deadline and fails closed: an unreachable service
// returns an error, never a made-up score.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotConfigured = errors.New("no analysis service is configured")
	ErrUnavailable   = errors.New("the analysis service could not be reached")
)

// Request is the payload sent to the analysis service.
type Request struct {
	ProjectID uuid.UUID `json:"projectId"`
	Name      string    `json:"name"`
	RiskType  string    `json:"riskType"`
}

// Result is one scored assessment returned by the service.
type Result struct {
	RiskType   string     `json:"riskType"`
	Score      int        `json:"score"`
	Factors    []Factor   `json:"factors"`
	ValidUntil *time.Time `json:"validUntil"`
}

type Factor struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
}

// Client talks to the analysis service. A zero base URL means the service
// is not configured and every call returns ErrNotConfigured.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Analyze requests a fresh assessment for the project.
func (c *Client) Analyze(ctx context.Context, request Request) (Result, error) {
	if c == nil || c.baseURL == "" {
		return Result{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(request)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: it responded with HTTP %d", ErrUnavailable, resp.StatusCode)
	}

	var result Result
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, err)
	}

	if result.Score < 0 || result.Score > 100 {
		return Result{}, fmt.Errorf("%w: it returned an invalid score", ErrUnavailable)
	}

	return result, nil
}
