package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Client talks to the Chroma REST API. The collection id is resolved once
// and cached for the lifetime of the client.
type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	logger     *logrus.Logger

	mu           sync.Mutex
	collectionID string
}

func NewClient(baseURL, collection string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		collection: collection,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// EnsureCollection resolves (creating if needed) the collection and caches its id.
func (c *Client) EnsureCollection(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.collectionID != "" {
		return c.collectionID, nil
	}

	req := CreateCollectionRequest{
		Name:        c.collection,
		GetOrCreate: true,
	}

	var col Collection
	if err := c.makeRequest(ctx, "POST", "/api/v1/collections", req, &col); err != nil {
		return "", fmt.Errorf("failed to get or create collection %q: %w", c.collection, err)
	}

	c.collectionID = col.ID
	return c.collectionID, nil
}

func (c *Client) Upsert(ctx context.Context, req UpsertRequest) error {
	id, err := c.EnsureCollection(ctx)
	if err != nil {
		return err
	}
	return c.makeRequest(ctx, "POST", fmt.Sprintf("/api/v1/collections/%s/upsert", id), req, nil)
}

func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	id, err := c.EnsureCollection(ctx)
	if err != nil {
		return nil, err
	}

	var response QueryResponse
	err = c.makeRequest(ctx, "POST", fmt.Sprintf("/api/v1/collections/%s/query", id), req, &response)
	return &response, err
}

func (c *Client) Heartbeat(ctx context.Context) error {
	return c.makeRequest(ctx, "GET", "/api/v1/heartbeat", nil, nil)
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	url := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
		contentLength = len(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"url":      url,
		"has_body": payload != nil,
		"size":     contentLength,
	}).Debug("Making Chroma API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"status_code":   resp.StatusCode,
		"method":        method,
		"url":           url,
		"response_size": len(responseBody),
	}).Debug("Chroma API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(responseBody))
	}

	if result != nil && len(responseBody) > 0 {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
