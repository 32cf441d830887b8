// Package lilypad implements the compute gateway against a Lilypad zkML
// endpoint. The anonymized payload is wrapped in a base64 envelope, submitted
// as a job, and polled for a result whose computation proof the provider
// attests.
package lilypad

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"finsecure/internal/gateway"
)

const (
	DefaultBaseURL = "https://api.lilypad.tech/v1"

	protocolVersion = "2.0"
	requestTimeout  = 30 * time.Second
)

// modelNames maps each task to the provider-side model identifier.
var modelNames = map[gateway.Task]string{
	gateway.TaskForecast:         "financial_forecast",
	gateway.TaskAnomalyDetection: "financial_anomaly_detector",
	gateway.TaskClassification:   "transaction_categorizer",
}

type Config struct {
	APIKey  string
	BaseURL string // defaults to DefaultBaseURL
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lilypad: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

type jobEnvelope struct {
	Model           string         `json:"model"`
	Data            encryptedData  `json:"data"`
	PrivacyLevel    string         `json:"privacy_level"`
	ZKProofRequest  bool           `json:"zk_proof_requested"`
	ComputationType string         `json:"computation_type"`
	Hyperparameters map[string]any `json:"hyperparameters,omitempty"`
}

type encryptedData struct {
	EncryptedPayload string `json:"encrypted_payload"`
	EncryptionMode   string `json:"encryption_mode"`
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type proofResponse struct {
	Verified  bool   `json:"verified"`
	ProofType string `json:"proof_type"`
}

// Submit wraps the request in the provider's base64 envelope and creates a
// job. The payload leaves the process only in its anonymized form.
func (c *Client) Submit(ctx context.Context, req gateway.Request) (string, error) {
	model, ok := modelNames[req.Task]
	if !ok {
		return "", fmt.Errorf("lilypad: unknown task %q", req.Task)
	}

	inner, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("lilypad: encode request: %w", err)
	}
	envelope := jobEnvelope{
		Model: model,
		Data: encryptedData{
			EncryptedPayload: base64.StdEncoding.EncodeToString(inner),
			EncryptionMode:   "zkml_compatible",
		},
		PrivacyLevel:    "zero_knowledge",
		ZKProofRequest:  true,
		ComputationType: "zkml",
		Hyperparameters: map[string]any{"privacy_level": "high"},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return "", fmt.Errorf("lilypad: encode envelope: %w", err)
	}

	var decoded submitResponse
	if err := c.do(ctx, http.MethodPost, "/jobs", body, &decoded); err != nil {
		return "", err
	}
	if decoded.JobID == "" {
		return "", fmt.Errorf("lilypad: submit response missing job id: %w", gateway.ErrUnavailable)
	}

	c.logger.InfoContext(ctx, "Submitted compute job to Lilypad",
		"job_id", decoded.JobID,
		"model", model,
		"task", req.Task.String())
	return decoded.JobID, nil
}

func (c *Client) Status(ctx context.Context, jobID string) (gateway.JobStatus, error) {
	var decoded statusResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID, nil, &decoded); err != nil {
		return "", err
	}

	switch status := gateway.JobStatus(decoded.Status); status {
	case gateway.JobPending, gateway.JobRunning, gateway.JobCompleted, gateway.JobFailed:
		return status, nil
	default:
		return "", fmt.Errorf("lilypad: job %s reported unknown status %q: %w", jobID, decoded.Status, gateway.ErrUnavailable)
	}
}

// Result fetches the finished document and then the job's proof attestation.
// A failed proof check degrades ProofVerified rather than erroring; the
// document itself is still usable.
func (c *Client) Result(ctx context.Context, jobID string) (gateway.JobResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+jobID+"/result", nil)
	if err != nil {
		return gateway.JobResult{}, fmt.Errorf("lilypad: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gateway.JobResult{}, fmt.Errorf("lilypad: fetch result: %w", gateway.ErrUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return gateway.JobResult{}, fmt.Errorf("lilypad: fetch result: status %d: %w", resp.StatusCode, gateway.ErrUnavailable)
	}

	var data json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return gateway.JobResult{}, fmt.Errorf("lilypad: decode result: %w", err)
	}

	result := gateway.JobResult{Data: data}

	var proof proofResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+jobID+"/proof", nil, &proof); err != nil {
		c.logger.WarnContext(ctx, "Could not verify computation proof",
			"job_id", jobID,
			"error", err)
		return result, nil
	}
	result.ProofVerified = proof.Verified
	return result, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ZK-Protocol-Version", protocolVersion)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("lilypad: build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lilypad: %s %s: %w", method, path, gateway.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("lilypad: %s %s: status %d: %w", method, path, resp.StatusCode, gateway.ErrUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lilypad: decode %s response: %w", path, err)
	}
	return nil
}
