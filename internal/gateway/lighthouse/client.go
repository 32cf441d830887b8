// Package lighthouse implements the storage gateway against the Lighthouse
// IPFS pinning service. Uploads go through the authenticated API; downloads
// fetch the content-addressed blob from the public gateway.
package lighthouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"finsecure/internal/gateway"
)

const (
	DefaultBaseURL    = "https://api.lighthouse.storage"
	DefaultGatewayURL = "https://gateway.lighthouse.storage"

	requestTimeout = 30 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string // defaults to DefaultBaseURL
	GatewayURL string // defaults to DefaultGatewayURL
}

type Client struct {
	apiKey     string
	baseURL    string
	gatewayURL string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("lighthouse: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GatewayURL == "" {
		cfg.GatewayURL = DefaultGatewayURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		gatewayURL: cfg.GatewayURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

type uploadResponse struct {
	Data struct {
		CID  string `json:"cid"`
		Name string `json:"fileName"`
	} `json:"data"`
}

type uploadsResponse struct {
	Data struct {
		Uploads []struct {
			CID       string `json:"cid"`
			FileName  string `json:"fileName"`
			SizeBytes int64  `json:"fileSizeInBytes,string"`
			CreatedAt int64  `json:"createdAt"` // unix millis
		} `json:"uploads"`
	} `json:"data"`
}

// Put uploads a snapshot as a multipart file and returns its descriptor; the
// reference is the content identifier assigned by the service.
func (c *Client) Put(ctx context.Context, name string, data []byte) (gateway.StoredObject, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return gateway.StoredObject{}, fmt.Errorf("lighthouse: build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return gateway.StoredObject{}, fmt.Errorf("lighthouse: write form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return gateway.StoredObject{}, fmt.Errorf("lighthouse: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v0/upload", &body)
	if err != nil {
		return gateway.StoredObject{}, fmt.Errorf("lighthouse: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var decoded uploadResponse
	if err := c.do(req, &decoded); err != nil {
		return gateway.StoredObject{}, err
	}
	if decoded.Data.CID == "" {
		return gateway.StoredObject{}, fmt.Errorf("lighthouse: upload response missing cid: %w", gateway.ErrUnavailable)
	}

	c.logger.InfoContext(ctx, "Snapshot uploaded to Lighthouse",
		"cid", decoded.Data.CID,
		"name", name,
		"size_bytes", len(data))

	return gateway.StoredObject{
		Ref:       decoded.Data.CID,
		Name:      name,
		Size:      int64(len(data)),
		CreatedAt: time.Now().UTC(),
		Status:    "pinned",
	}, nil
}

// Get downloads a snapshot from the public IPFS gateway by its reference.
func (c *Client) Get(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+"/ipfs/"+ref, nil)
	if err != nil {
		return nil, fmt.Errorf("lighthouse: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lighthouse: fetch %s: %w", ref, gateway.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("lighthouse: snapshot %s: %w", ref, gateway.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lighthouse: fetch %s: status %d: %w", ref, resp.StatusCode, gateway.ErrUnavailable)
	}
	return io.ReadAll(resp.Body)
}

// List returns the account's uploads, newest first as reported by the
// service.
func (c *Client) List(ctx context.Context) ([]gateway.StoredObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v0/uploads", nil)
	if err != nil {
		return nil, fmt.Errorf("lighthouse: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	var decoded uploadsResponse
	if err := c.do(req, &decoded); err != nil {
		return nil, err
	}

	objects := make([]gateway.StoredObject, 0, len(decoded.Data.Uploads))
	for _, u := range decoded.Data.Uploads {
		objects = append(objects, gateway.StoredObject{
			Ref:       u.CID,
			Name:      u.FileName,
			Size:      u.SizeBytes,
			CreatedAt: time.UnixMilli(u.CreatedAt).UTC(),
			Status:    "pinned",
		})
	}
	return objects, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("lighthouse: %s %s: %w", req.Method, req.URL.Path, gateway.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("lighthouse: %s %s: status %d: %w", req.Method, req.URL.Path, resp.StatusCode, gateway.ErrUnavailable)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("lighthouse: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
