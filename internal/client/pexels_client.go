package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/reelbrief/api/internal/capability"
	"github.com/reelbrief/api/internal/config"
)

// PexelsClient implements capability.BRollSource against the Pexels video
// search API. Fetch is best-effort by contract: a miss or provider error for
// one tag shrinks the clip set and is logged, never surfaced.
type PexelsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type pexelsSearchResponse struct {
	Videos []struct {
		ID         int     `json:"id"`
		Duration   float64 `json:"duration"`
		VideoFiles []struct {
			Link    string `json:"link"`
			Quality string `json:"quality"`
		} `json:"video_files"`
	} `json:"videos"`
}

// NewPexelsClient creates a new Pexels b-roll client
func NewPexelsClient(cfg *config.PexelsConfig) *PexelsClient {
	return &PexelsClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *PexelsClient) IsConfigured() bool {
	return c.apiKey != ""
}

// Fetch returns one clip per tag where the search hits. Unconfigured clients
// return stock fallback clips so compositions always have cutaway material.
func (c *PexelsClient) Fetch(ctx context.Context, tags []string) []capability.Clip {
	if !c.IsConfigured() {
		return c.fallbackClips(tags)
	}

	var clips []capability.Clip
	for _, tag := range tags {
		clip, err := c.searchOne(ctx, tag)
		if err != nil {
			log.Printf("pexels: search %q failed: %v", tag, err)
			continue
		}
		if clip != nil {
			clips = append(clips, *clip)
		}
	}
	return clips
}

func (c *PexelsClient) searchOne(ctx context.Context, tag string) (*capability.Clip, error) {
	searchURL := fmt.Sprintf("%s/videos/search?query=%s&per_page=1", c.baseURL, url.QueryEscape(tag))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

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
		return nil, fmt.Errorf("pexels API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var searchResp pexelsSearchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(searchResp.Videos) == 0 || len(searchResp.Videos[0].VideoFiles) == 0 {
		return nil, nil
	}

	video := searchResp.Videos[0]
	return &capability.Clip{
		URL:             video.VideoFiles[0].Link,
		Tag:             tag,
		DurationSeconds: video.Duration,
	}, nil
}

func (c *PexelsClient) fallbackClips(tags []string) []capability.Clip {
	clips := make([]capability.Clip, 0, len(tags))
	for _, tag := range tags {
		clips = append(clips, capability.Clip{
			URL:             fmt.Sprintf("https://cdn.reelbrief.dev/stock/%s.mp4", url.PathEscape(tag)),
			Tag:             tag,
			DurationSeconds: 4,
		})
	}
	return clips
}
