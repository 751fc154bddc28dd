// Package api is the HTTP client for the remote diarization backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dan-lund/diamond/internal/types"
)

// Client talks to the diarization backend over its HTTP contract.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// SubmitResponse is the body returned by POST /diarize/.
type SubmitResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// StatusResponse is the body returned by GET /status/{task_id}.
// Result is meaningful only when Status is "completed".
type StatusResponse struct {
	Status string          `json:"status"`
	Result []types.Segment `json:"result"`
	Error  string          `json:"error"`
}

// SpeakersResponse is the body returned by GET /speakers.
type SpeakersResponse struct {
	Speakers []string `json:"speakers"`
	Total    int      `json:"total"`
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Submit uploads the audio file at path as a multipart request and returns
// the task identifier assigned by the backend.
func (c *Client) Submit(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy audio into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/diarize/", &body)
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var resp SubmitResponse
	if err := c.do(req, &resp); err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	if resp.TaskID == "" {
		return "", fmt.Errorf("submit: backend returned no task id")
	}
	return resp.TaskID, nil
}

// Status queries the processing status of taskID.
func (c *Client) Status(ctx context.Context, taskID string) (*StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}

	var resp StatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("status %s: %w", taskID, err)
	}
	return &resp, nil
}

// Speakers fetches the enrolled speaker identities.
func (c *Client) Speakers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/speakers", nil)
	if err != nil {
		return nil, fmt.Errorf("build speakers request: %w", err)
	}

	var resp SpeakersResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("speakers: %w", err)
	}
	return resp.Speakers, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
