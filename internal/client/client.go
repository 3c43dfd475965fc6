// Package client talks to a prize wheel server over HTTP.
package client

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

	"prizewheel/internal/models"
)

var (
	// ErrTransport wraps failures to reach the server or read its reply.
	ErrTransport = errors.New("transport error")
	// ErrMalformed wraps replies that do not have the expected shape.
	ErrMalformed = errors.New("malformed response")
)

// Client calls the wheel endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL. A zero timeout leaves
// requests bounded only by their context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Prizes reads the structured prize list.
func (c *Client) Prizes(ctx context.Context) ([]models.Prize, error) {
	var list models.PrizeList
	if err := c.getJSON(ctx, "/api/prizes", &list); err != nil {
		return nil, err
	}
	return list.Prizes, nil
}

// Spin asks the server for an outcome.
func (c *Client) Spin(ctx context.Context) (models.SpinResult, error) {
	var result models.SpinResult
	err := c.getJSON(ctx, "/spin", &result)
	return result, err
}

// DeletePrize removes a prize by name. A server-side refusal is reported in
// the result, not as an error.
func (c *Client) DeletePrize(ctx context.Context, name string) (models.APIResult, error) {
	var result models.APIResult
	err := c.postJSON(ctx, "/delete_prize", models.DeletePrizeRequest{Name: name}, &result)
	return result, err
}

// SavePrizes overwrites the server's prize list with rows, in order.
func (c *Client) SavePrizes(ctx context.Context, rows []models.PrizeRow) (models.APIResult, error) {
	if rows == nil {
		rows = []models.PrizeRow{}
	}
	var result models.APIResult
	err := c.postJSON(ctx, "/save_admin_changes", models.SavePrizesRequest{Prizes: rows}, &result)
	return result, err
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return c.do(req, dest)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

// do decodes the body of any non-5xx reply: the mutating endpoints carry
// their failure in {success:false} bodies.
func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrTransport, req.URL.Path, err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s returned %d", ErrTransport, req.URL.Path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: %s returned %d: %v", ErrMalformed, req.URL.Path, resp.StatusCode, err)
	}
	return nil
}

func (c *Client) getBody(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrTransport, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s returned %d", ErrTransport, path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	return body, nil
}
