package client

import (
	"context"
	"fmt"
	"io"
)

// MockStorage stands in for R2 when no credentials are configured. Uploads
// drain the body (so byte counts stay realistic) and return a CDN-shaped URL.
type MockStorage struct {
	publicURL string
}

func NewMockStorage() *MockStorage {
	return &MockStorage{publicURL: "https://cdn.reelbrief.dev"}
}

func (m *MockStorage) Name() string {
	return "mock"
}

func (m *MockStorage) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", m.publicURL, key), nil
}
