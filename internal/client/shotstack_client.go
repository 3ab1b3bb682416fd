package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/config"
)

// Poll bounds for render completion.
const (
	shotstackPollInterval = 5 * time.Second
	shotstackMaxWait      = 10 * time.Minute
)

// ShotstackClient implements capability.VideoComposer against the Shotstack
// edit API: avatar footage on the main track, b-roll cutaways above it.
type ShotstackClient struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	maxWait      time.Duration
}

type shotstackClip struct {
	AssetURL string  `json:"assetUrl"`
	Start    float64 `json:"start"`
	Length   float64 `json:"length"`
}

type shotstackRenderRequest struct {
	Avatar shotstackClip   `json:"avatar"`
	BRoll  []shotstackClip `json:"broll"`
	Output string          `json:"output"`
}

type shotstackRenderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type shotstackStatusResponse struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	URL      string  `json:"url,omitempty"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// NewShotstackClient creates a new Shotstack composition client
func NewShotstackClient(cfg *config.ShotstackConfig) *ShotstackClient {
	return &ShotstackClient{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		pollInterval: shotstackPollInterval,
		maxWait:      shotstackMaxWait,
	}
}

func (c *ShotstackClient) Name() string {
	return "shotstack"
}

// IsConfigured returns true if the client has valid configuration
func (c *ShotstackClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Compose renders the avatar artifact with b-roll cutaways into a single
// video and downloads the result. Falls back to a deterministic mock buffer
// when the client is not configured.
func (c *ShotstackClient) Compose(ctx context.Context, artifact *capability.AvatarArtifact, clips []capability.Clip) (*capability.Composition, error) {
	if !c.IsConfigured() {
		return c.composeMock(artifact, clips), nil
	}

	renderID, err := c.submit(ctx, artifact, clips)
	if err != nil {
		return nil, err
	}

	status, err := c.awaitRender(ctx, renderID)
	if err != nil {
		return nil, err
	}

	buffer, err := c.download(ctx, status.URL)
	if err != nil {
		return nil, err
	}

	return &capability.Composition{
		Buffer:          buffer,
		ContentType:     "video/mp4",
		DurationSeconds: status.Duration,
	}, nil
}

func (c *ShotstackClient) submit(ctx context.Context, artifact *capability.AvatarArtifact, clips []capability.Clip) (string, error) {
	reqBody := shotstackRenderRequest{
		Avatar: shotstackClip{
			AssetURL: artifact.URL,
			Start:    0,
			Length:   artifact.DurationSeconds,
		},
		Output: "mp4",
	}

	// Spread cutaways evenly across the avatar footage.
	if len(clips) > 0 {
		step := artifact.DurationSeconds / float64(len(clips)+1)
		for i, clip := range clips {
			length := clip.DurationSeconds
			if length > step {
				length = step
			}
			reqBody.BRoll = append(reqBody.BRoll, shotstackClip{
				AssetURL: clip.URL,
				Start:    step * float64(i+1),
				Length:   length,
			})
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/render", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("shotstack API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var renderResp shotstackRenderResponse
	if err := json.Unmarshal(respBody, &renderResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return renderResp.ID, nil
}

// awaitRender polls until the render is done, failed, or maxWait elapses.
// The timeout surfaces as an ordinary provider error so the video fails
// instead of pinning its goroutine on a stuck render.
func (c *ShotstackClient) awaitRender(ctx context.Context, renderID string) (*shotstackStatusResponse, error) {
	deadline := time.Now().Add(c.maxWait)

	for time.Now().Before(deadline) {
		status, err := c.getStatus(ctx, renderID)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "done":
			return status, nil
		case "failed":
			return nil, fmt.Errorf("shotstack render failed: %s", status.Error)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}

	return nil, fmt.Errorf("shotstack render timed out after %v", c.maxWait)
}

func (c *ShotstackClient) getStatus(ctx context.Context, renderID string) (*shotstackStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/render/"+renderID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)

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
		return nil, fmt.Errorf("shotstack API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var status shotstackStatusResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &status, nil
}

func (c *ShotstackClient) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download render: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render download error (status %d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *ShotstackClient) composeMock(artifact *capability.AvatarArtifact, clips []capability.Clip) *capability.Composition {
	// Roughly 256 KiB per second of footage keeps byte-based storage costs
	// non-trivial in credential-less runs.
	size := int(artifact.DurationSeconds * 256 * 1024)
	if size < 1024 {
		size = 1024
	}
	return &capability.Composition{
		Buffer:          make([]byte, size),
		ContentType:     "video/mp4",
		DurationSeconds: artifact.DurationSeconds,
	}
}
