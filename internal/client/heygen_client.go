package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/config"
)

// wordsPerSecond approximates spoken delivery speed, used to estimate clip
// duration for mock artifacts.
const wordsPerSecond = 2.5

// Poll bounds for avatar synthesis.
const (
	heygenPollInterval = 5 * time.Second
	heygenMaxWait      = 10 * time.Minute
)

// HeyGenClient implements capability.AvatarProvider against the HeyGen API.
type HeyGenClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	avatarID     string
	voiceID      string
	pollInterval time.Duration
	maxWait      time.Duration
}

type heygenGenerateRequest struct {
	AvatarID string `json:"avatar_id"`
	VoiceID  string `json:"voice_id"`
	Text     string `json:"text"`
}

type heygenGenerateResponse struct {
	VideoID string `json:"video_id"`
	Status  string `json:"status"`
}

type heygenStatusResponse struct {
	VideoID  string  `json:"video_id"`
	Status   string  `json:"status"`
	VideoURL string  `json:"video_url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// NewHeyGenClient creates a new HeyGen avatar client
func NewHeyGenClient(cfg *config.HeyGenConfig) *HeyGenClient {
	return &HeyGenClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		avatarID:     cfg.Avatar,
		voiceID:      cfg.Voice,
		pollInterval: heygenPollInterval,
		maxWait:      heygenMaxWait,
	}
}

func (c *HeyGenClient) Name() string {
	return "heygen"
}

// IsConfigured returns true if the client has valid configuration
func (c *HeyGenClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Generate synthesizes a talking-avatar clip for the script. It submits the
// task and polls until the provider reports a terminal status. Falls back to
// a deterministic mock artifact when the client is not configured.
func (c *HeyGenClient) Generate(ctx context.Context, script string) (*capability.AvatarArtifact, error) {
	if !c.IsConfigured() {
		return c.generateMock(script), nil
	}

	taskID, err := c.submit(ctx, script)
	if err != nil {
		return nil, err
	}

	return c.awaitResult(ctx, taskID)
}

func (c *HeyGenClient) submit(ctx context.Context, script string) (string, error) {
	reqBody := heygenGenerateRequest{
		AvatarID: c.avatarID,
		VoiceID:  c.voiceID,
		Text:     script,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/video/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("heygen API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var genResp heygenGenerateResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return genResp.VideoID, nil
}

// awaitResult polls until the provider reports a terminal status or maxWait
// elapses. A provider stuck in "processing" must not pin a pipeline goroutine
// forever; the timeout surfaces as an ordinary provider error.
func (c *HeyGenClient) awaitResult(ctx context.Context, taskID string) (*capability.AvatarArtifact, error) {
	deadline := time.Now().Add(c.maxWait)

	for time.Now().Before(deadline) {
		status, err := c.getStatus(ctx, taskID)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "completed":
			return &capability.AvatarArtifact{
				URL:             status.VideoURL,
				DurationSeconds: status.Duration,
			}, nil
		case "failed":
			return nil, fmt.Errorf("heygen generation failed: %s", status.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return nil, fmt.Errorf("heygen generation timed out after %v", c.maxWait)
}

func (c *HeyGenClient) getStatus(ctx context.Context, taskID string) (*heygenStatusResponse, error) {
	url := fmt.Sprintf("%s/v1/video_status.get?video_id=%s", c.baseURL, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("heygen API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var status heygenStatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &status, nil
}

func (c *HeyGenClient) generateMock(script string) *capability.AvatarArtifact {
	words := len(strings.Fields(script))
	duration := float64(words) / wordsPerSecond
	if duration < 1 {
		duration = 1
	}
	return &capability.AvatarArtifact{
		URL:             "https://cdn.reelbrief.dev/mock/avatar.mp4",
		DurationSeconds: duration,
	}
}
