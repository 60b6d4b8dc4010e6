package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPOracle invokes a remote classifier stage over HTTP. The endpoint
// receives {"text": ...} and responds {"probability": ...}. Model loading
// and inference stay outside this module; this is the transport to them.
type HTTPOracle struct {
	endpoint string
	client   *http.Client
}

// NewHTTPOracle returns an oracle bound to endpoint. A non-positive timeout
// leaves the call unbounded; callers needing bounded latency set one.
func NewHTTPOracle(endpoint string, timeout time.Duration) *HTTPOracle {
	return &HTTPOracle{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type oracleRequest struct {
	Text string `json:"text"`
}

type oracleResponse struct {
	Probability float64 `json:"probability"`
}

// Predict posts the normalized text to the classifier endpoint.
func (o *HTTPOracle) Predict(ctx context.Context, normalizedText string) (float64, error) {
	payload, err := json.Marshal(oracleRequest{Text: normalizedText})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read classifier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed oracleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse classifier response: %w", err)
	}
	return parsed.Probability, nil
}
