package e2e

import (
	"fmt"
	"net/http"
	"testing"
)

// createParsedBrief creates a brief through the API and returns its id.
func createParsedBrief(t *testing.T, ta *testApp) string {
	t.Helper()
	result := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/briefs",
		`{"rawInput": "Promote our meal kit to busy professionals who hate grocery shopping. Highlight the 15-minute recipes."}`))
	id, _ := result["id"].(string)
	if id == "" {
		t.Fatal("expected created brief id")
	}
	return id
}

func TestGenerationStart_Accepted(t *testing.T) {
	ta := setupApp(t)
	briefID := createParsedBrief(t, ta)

	body := fmt.Sprintf(`{"briefId": %q, "targetCount": 3}`, briefID)
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generations", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	// The pipeline is detached: the caller gets 202 and the persisted row.
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["id"] == "" || result["id"] == nil {
		t.Error("expected a generation id")
	}
	if result["briefId"] != briefID {
		t.Errorf("expected briefId %s, got %v", briefID, result["briefId"])
	}
	if result["targetCount"] != float64(3) {
		t.Errorf("expected targetCount 3, got %v", result["targetCount"])
	}
	if result["status"] != "PENDING" {
		t.Errorf("expected status PENDING, got %v", result["status"])
	}
}

func TestGenerationStart_UnknownBrief(t *testing.T) {
	ta := setupApp(t)

	body := `{"briefId": "00000000-0000-4000-8000-000000000000", "targetCount": 2}`
	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generations", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestGenerationStart_InvalidTargetCount(t *testing.T) {
	ta := setupApp(t)
	briefID := createParsedBrief(t, ta)

	for _, count := range []int{0, 11} {
		body := fmt.Sprintf(`{"briefId": %q, "targetCount": %d}`, briefID, count)
		resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/generations", body)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("targetCount %d: expected 400, got %d", count, resp.StatusCode)
		}
	}
}

func TestGenerationStatus_Polling(t *testing.T) {
	ta := setupApp(t)
	briefID := createParsedBrief(t, ta)

	started := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/generations",
		fmt.Sprintf(`{"briefId": %q, "targetCount": 2}`, briefID)))
	genID, _ := started["id"].(string)
	if genID == "" {
		t.Fatal("expected generation id")
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generations/"+genID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["id"] != genID {
		t.Errorf("expected id %s, got %v", genID, result["id"])
	}
	// No worker runs in these tests, so the pipeline has not advanced.
	if result["status"] != "PENDING" {
		t.Errorf("expected status PENDING, got %v", result["status"])
	}
	if _, ok := result["videoIds"]; !ok {
		t.Error("expected 'videoIds' in status response")
	}
	if _, ok := result["totalCost"]; !ok {
		t.Error("expected 'totalCost' in status response")
	}
}

func TestGenerationStatus_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generations/missing-gen", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)
}

func TestGenerationCosts_EmptyLedger(t *testing.T) {
	ta := setupApp(t)
	briefID := createParsedBrief(t, ta)

	started := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/generations",
		fmt.Sprintf(`{"briefId": %q, "targetCount": 1}`, briefID)))
	genID, _ := started["id"].(string)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generations/"+genID+"/costs", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["generationId"] != genID {
		t.Errorf("expected generationId %s, got %v", genID, result["generationId"])
	}
	entries, ok := result["entries"].([]interface{})
	if !ok {
		t.Fatal("expected 'entries' array")
	}
	if len(entries) != 0 {
		t.Errorf("expected empty ledger before the pipeline runs, got %d entries", len(entries))
	}
}

func TestGenerationVideos_EmptyBeforePipeline(t *testing.T) {
	ta := setupApp(t)
	briefID := createParsedBrief(t, ta)

	started := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/generations",
		fmt.Sprintf(`{"briefId": %q, "targetCount": 2}`, briefID)))
	genID, _ := started["id"].(string)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/generations/"+genID+"/videos", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)
}
