// Package nli implements the classifier against an HTTP inference server
// hosting a natural-language-inference model. For each candidate label the
// server scores how strongly the text entails it; the two entailment scores
// are normalized into the pair's probabilities.
package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/newslens/internal/classifier"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 4 << 10

// PredictRequest is the body sent to POST /predict.
type PredictRequest struct {
	Text        string   `json:"text"`
	Labels      []string `json:"labels"`
	TargetLabel string   `json:"target_label"`
}

// PredictResponse carries one entailment score per requested label.
type PredictResponse struct {
	Scores []float64 `json:"scores"`
	Model  string    `json:"model,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Model       string `json:"model"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Client is an HTTP client for the inference server. It implements
// classifier.Classifier and is safe for concurrent use.
type Client struct {
	baseURL     string
	targetLabel string
	httpClient  *http.Client
}

// NewClient creates a new inference server client.
func NewClient(baseURL, targetLabel string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		targetLabel: targetLabel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict scores text against both labels.
func (c *Client) Predict(ctx context.Context, text string, labels classifier.Labels) (classifier.Probabilities, error) {
	if strings.TrimSpace(text) == "" {
		return classifier.Probabilities{}, classifier.ErrEmptyText
	}

	body, err := json.Marshal(PredictRequest{
		Text:        text,
		Labels:      labels[:],
		TargetLabel: c.targetLabel,
	})
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifier.Probabilities{}, statusError(resp)
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return classifier.Probabilities{}, fmt.Errorf("failed to decode response: %w", err)
	}

	p, err := classifier.Normalize(result.Scores)
	if err != nil {
		return classifier.Probabilities{}, fmt.Errorf("inference server returned unusable scores: %w", err)
	}
	return p, nil
}

// Health checks the inference server health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	var result HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Ping implements the health checker used by the /health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	h, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if !h.ModelLoaded {
		return errors.New("model not loaded")
	}
	return nil
}

// statusError turns a non-200 reply into an error. When the server reports
// a message it is returned as-is so failed tasks show the model's own words.
func statusError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	var e errorResponse
	if json.Unmarshal(raw, &e) == nil {
		if e.Error != "" {
			return errors.New(e.Error)
		}
		if e.Detail != "" {
			return errors.New(e.Detail)
		}
	}
	return fmt.Errorf("inference server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
