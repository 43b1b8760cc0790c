// Package github is a minimal client for the GitHub contents API, used as
// the remote store for the user document. Every read and write is a full
// round trip for a single file; writes are guarded by the file's blob SHA
// so a stale writer fails instead of clobbering a newer version.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotFound means the file does not exist in the repository yet.
	ErrNotFound = errors.New("file not found")
	// ErrStaleRevision means the write carried a SHA that no longer matches
	// the file's current version; the caller must re-fetch before retrying.
	ErrStaleRevision = errors.New("stale revision")
	// ErrTransient covers network failures and unexpected HTTP statuses.
	ErrTransient = errors.New("transient github error")
)

const defaultBaseURL = "https://api.github.com"

// Document is one fetched file: raw content plus the revision token (blob
// SHA) required to overwrite it.
type Document struct {
	Content []byte
	SHA     string
}

type Client struct {
	owner   string
	repo    string
	path    string
	token   string
	baseURL string
	httpc   *http.Client
}

func NewClient(owner, repo, path, token string) *Client {
	return &Client{
		owner:   owner,
		repo:    repo,
		path:    path,
		token:   token,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different API root. Used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

func (c *Client) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, c.path)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

// Fetch retrieves the current file content and its SHA.
func (c *Client) Fetch(ctx context.Context) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError(resp)
	}

	var body struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode contents response: %w", err)
	}
	if body.SHA == "" {
		return nil, fmt.Errorf("contents response missing sha")
	}

	// The API wraps base64 content with newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(body.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode file content: %w", err)
	}
	return &Document{Content: raw, SHA: body.SHA}, nil
}

// Put uploads content as a commit with message. A non-empty sha updates the
// existing file; an empty sha is a create-only write that fails if the file
// already exists. Returns the new SHA.
func (c *Client) Put(ctx context.Context, content []byte, sha, message string) (string, error) {
	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(), bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		// GitHub answers 409 for a mismatched SHA and 422 for a create on
		// an existing path.
		return "", ErrStaleRevision
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return "", statusError(resp)
	}

	var body struct {
		Content struct {
			SHA string `json:"sha"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode put response: %w", err)
	}
	return body.Content.SHA, nil
}

func statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("%w: status %d: %s", ErrTransient, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
