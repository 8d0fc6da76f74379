// Package images talks to the external blob host that stores post and
// profile media. The application only ever hands the host a data URL (or a
// remote URL) and gets back a permanent URL; identifiers for deletion are
// derived from those URLs, never stored separately.
package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Uploader is the blob host boundary.
type Uploader interface {
	Upload(ctx context.Context, source string) (string, error)
	Destroy(ctx context.Context, publicID string) error
}

// Client is an HTTP Uploader against a configured blob host.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a blob host client. An empty baseURL returns a
// pass-through client that stores nothing and echoes sources back, which
// keeps development setups working without a media account.
func NewClient(baseURL, apiKey string) Uploader {
	if baseURL == "" {
		return passthrough{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload sends the source (data URL or remote URL) to the host and returns
// the permanent URL of the stored blob.
func (c *Client) Upload(ctx context.Context, source string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"source":    source,
		"public_id": uuid.NewString(),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("media upload: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("media upload: decoding response: %w", err)
	}
	if body.URL == "" {
		return "", fmt.Errorf("media upload: host returned no URL")
	}
	return body.URL, nil
}

// Destroy removes a stored blob by its public ID.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/media/"+url.PathEscape(publicID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("media destroy: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media destroy: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// PublicID derives the blob host identifier from a stored URL: the trailing
// path segment with its extension stripped.
func PublicID(rawURL string) string {
	segment := path.Base(rawURL)
	if i := strings.LastIndex(segment, "."); i > 0 {
		segment = segment[:i]
	}
	return segment
}

// passthrough is the no-op Uploader used when no blob host is configured.
type passthrough struct{}

func (passthrough) Upload(ctx context.Context, source string) (string, error) {
	return source, nil
}

func (passthrough) Destroy(ctx context.Context, publicID string) error {
	return nil
}
