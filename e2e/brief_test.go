package e2e

import (
	"net/http"
	"testing"
)

func TestBriefCreate_Success(t *testing.T) {
	ta := setupApp(t)

	body := `{
		"rawInput": "Promote our new sleep gummies to stressed parents who can't switch off at night. Emphasize the natural ingredients."
	}`

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/briefs", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusCreated)

	result := parseJSON(t, resp)
	if result["id"] == "" || result["id"] == nil {
		t.Error("expected an id")
	}
	// No OpenAI key in tests, so the mock parser runs and always succeeds.
	if result["status"] != "PARSED" {
		t.Errorf("expected status PARSED, got %v", result["status"])
	}

	parsed, ok := result["parsedData"].(map[string]interface{})
	if !ok {
		t.Fatal("expected 'parsedData' object")
	}
	for _, field := range []string{"hook", "persona", "emotion", "bRollTags", "testimonialPoints"} {
		if _, ok := parsed[field]; !ok {
			t.Errorf("expected parsedData field %q", field)
		}
	}
}

func TestBriefCreate_InputTooShort(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodPost, "/api/briefs", `{"rawInput": "too short"}`)
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

func TestBriefCreate_NoAuth(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodPost, "/api/briefs", `{"rawInput": "Promote our new sleep gummies to stressed parents."}`, nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusUnauthorized)
}

func TestBriefGet_NotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/briefs/00000000-0000-4000-8000-000000000000", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusNotFound)

	result := parseJSON(t, resp)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("expected error code NOT_FOUND, got %v", errObj["code"])
	}
}

func TestBriefGet_RoundTrip(t *testing.T) {
	ta := setupApp(t)

	created := parseJSON(t, mustAuthRequest(t, ta, http.MethodPost, "/api/briefs",
		`{"rawInput": "Sell our standing desk to remote workers with back pain. Focus on posture and energy."}`))
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected created brief id")
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/briefs/"+id, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["id"] != id {
		t.Errorf("expected id %s, got %v", id, result["id"])
	}
	if result["status"] != "PARSED" {
		t.Errorf("expected status PARSED, got %v", result["status"])
	}
}

// mustAuthRequest performs an authenticated request and fails the test on
// transport errors.
func mustAuthRequest(t *testing.T, ta *testApp, method, path, body string) *http.Response {
	t.Helper()
	resp, err := doAuthRequest(t, ta.app, method, path, body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
