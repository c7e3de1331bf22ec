package tui

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"cinechat/internal/domain"
)

// Client talks to a running cinechat server.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &Client{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
}

// Ask posts msg to /get and decodes the payload. A 400 still carries an
// error payload and is returned as a response, not an error.
func (c *Client) Ask(ctx context.Context, msg string) (domain.Response, error) {
	form := url.Values{"msg": {msg}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/get", strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Response{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Response{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return domain.Response{}, fmt.Errorf("server returned %s", resp.Status)
	}
	var out domain.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Response{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
