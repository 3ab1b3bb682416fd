package e2e

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/reelbrief/api/internal/model"
)

// seedVideo plants a completed video under an existing generation, as if the
// pipeline had produced it.
func seedVideo(t *testing.T, ta *testApp, generationID string) *model.Video {
	t.Helper()

	now := time.Now()
	url := "https://cdn.test.example/videos/" + generationID + "/video-1.mp4"
	video := &model.Video{
		ID:             "video-1",
		GenerationID:   generationID,
		Status:         model.VideoStatusCompleted,
		QualityStatus:  model.QualityStatusPending,
		ScriptProvider: "openai",
		AvatarProvider: "heygen",
		GenerationParams: model.GenerationParams{
			Script: "Hook line. Body line. Call to action.",
		},
		VideoURL:  &url,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ta.store.SaveVideo(context.Background(), video); err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}
	if err := ta.store.AddGenerationVideo(context.Background(), generationID, video.ID); err != nil {
		t.Fatalf("failed to register video: %v", err)
	}
	return video
}

// startGeneration creates a brief and a generation through the API and
// returns the generation id.
func startGeneration(t *testing.T, ta *testApp) string {
	t.Helper()
	briefID := createParsedBrief(t, ta)
	started := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/generations",
		fmt.Sprintf(`{"briefId": %q, "targetCount": 2}`, briefID)))
	genID, _ := started["id"].(string)
	if genID == "" {
		t.Fatal("expected generation id")
	}
	return genID
}

func TestVideoGet(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/videos/"+video.ID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["id"] != video.ID {
		t.Errorf("expected id %s, got %v", video.ID, result["id"])
	}
	if result["status"] != "COMPLETED" {
		t.Errorf("expected status COMPLETED, got %v", result["status"])
	}
	if result["videoUrl"] == nil {
		t.Error("expected a videoUrl")
	}
}

func TestVideoGet_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/videos/missing", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestVideoQuality_Passed(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/quality", `{"status": "PASSED"}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["qualityStatus"] != "PASSED" {
		t.Errorf("expected qualityStatus PASSED, got %v", result["qualityStatus"])
	}
}

func TestVideoQuality_RejectsUnknownStatus(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	// Only the review verdicts are accepted; PENDING cannot be written back.
	for _, body := range []string{`{"status": "PENDING"}`, `{"status": "APPROVED"}`, `{}`} {
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/quality", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestVideoIterate_FromApprovedVideo(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	// Approve first, then iterate.
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/quality", `{"status": "PASSED"}`)
	if err != nil {
		t.Fatalf("quality request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	resp, err = doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/iterate",
		`{"targetCount": 2, "variationParams": {"tone": "more playful"}}`)
	if err != nil {
		t.Fatalf("iterate request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["id"] == "" || result["id"] == nil {
		t.Error("expected a child generation id")
	}
	if result["parentGenerationId"] != genID {
		t.Errorf("expected parentGenerationId %s, got %v", genID, result["parentGenerationId"])
	}
	if result["status"] != "PENDING" {
		t.Errorf("expected status PENDING, got %v", result["status"])
	}

	// The child shares the source generation's brief.
	childStatus := parseJSON(t, mustAuthRequest(t, ta, http.MethodGet, "/api/generations/"+result["id"].(string), ""))
	if childStatus["briefId"] == "" || childStatus["briefId"] == nil {
		t.Error("expected child to inherit the briefId")
	}
	if childStatus["parentGenerationId"] != genID {
		t.Errorf("expected persisted parentGenerationId %s, got %v", genID, childStatus["parentGenerationId"])
	}
}

func TestVideoIterate_RequiresApproval(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	// qualityStatus is still PENDING.
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/iterate", `{"targetCount": 2}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusBadRequest)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "VALIDATION_ERROR" {
		t.Errorf("expected error code VALIDATION_ERROR, got %v", errObj["code"])
	}
}

func TestVideoIterate_InvalidTargetCount(t *testing.T) {
	ta := setupApp(t)
	genID := startGeneration(t, ta)
	video := seedVideo(t, ta, genID)

	for _, body := range []string{`{"targetCount": 0}`, `{"targetCount": 11}`} {
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/"+video.ID+"/iterate", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestVideoIterate_UnknownVideo(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/videos/missing/iterate", `{"targetCount": 2}`)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}
