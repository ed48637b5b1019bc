// Package bridge implements the browser driver against a local automation
// bridge: a sidecar process that owns the real browser session and exposes
// it over a small REST API.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dlukin/scout-responder/internal/browser"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "http://127.0.0.1:9223"
	contentType    = "application/json"
)

// Client talks to the browser bridge. It implements browser.Driver.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	BaseURL    string
}

var _ browser.Driver = (*Client)(nil)

// New creates a bridge client. baseURL defaults to the local bridge port
// when empty; token may be empty when the bridge runs unauthenticated.
func New(baseURL, token string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		token:   token,
		logger:  log,
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// actionResponse is the bridge's reply to soft-failable actions.
type actionResponse struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// profileResponse carries the raw HTML of the open profile page.
type profileResponse struct {
	HTML string `json:"html"`
}

func (c *Client) Open(ctx context.Context, url string) error {
	_, err := c.post(ctx, "/session/open", map[string]string{"url": url})
	return err
}

func (c *Client) ClickViewProfile(ctx context.Context) (bool, error) {
	return c.action(ctx, "/session/profile/view")
}

// ReadProfileText fetches the open profile page from the bridge and reduces
// it to visible text.
func (c *Client) ReadProfileText(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/session/profile")
	if err != nil {
		return "", err
	}

	var resp profileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode profile response: %w", err)
	}

	text, err := ExtractText(resp.HTML)
	if err != nil {
		return "", fmt.Errorf("extract profile text: %w", err)
	}

	return text, nil
}

func (c *Client) FocusMessageBox(ctx context.Context) (bool, error) {
	return c.action(ctx, "/session/message/focus")
}

func (c *Client) FillMessage(ctx context.Context, text string) (bool, error) {
	body, err := c.post(ctx, "/session/message/fill", map[string]string{"text": text})
	if err != nil {
		return false, err
	}
	return decodeAction(body)
}

func (c *Client) Send(ctx context.Context) (bool, error) {
	return c.action(ctx, "/session/message/send")
}

func (c *Client) VerifySent(ctx context.Context) (bool, error) {
	return c.action(ctx, "/session/message/verify")
}

func (c *Client) Skip(ctx context.Context) error {
	_, err := c.post(ctx, "/session/skip", nil)
	return err
}

func (c *Client) Close() error {
	_, err := c.post(context.Background(), "/session/close", nil)
	return err
}

// action posts to a soft-failable endpoint and decodes the ok flag.
func (c *Client) action(ctx context.Context, path string) (bool, error) {
	body, err := c.post(ctx, path, nil)
	if err != nil {
		return false, err
	}
	return decodeAction(body)
}

func decodeAction(body []byte) (bool, error) {
	var resp actionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, fmt.Errorf("decode action response: %w", err)
	}
	return resp.OK, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	c.setHeaders(req)
	c.logger.Debug("bridge request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bridge returned bad status: %s", resp.Status)
	}

	return data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", contentType)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
}
