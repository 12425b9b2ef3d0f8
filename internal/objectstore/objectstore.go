// Package objectstore issues presigned upload URLs and normalizes uploaded
// object URLs into stable serving paths.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"mikromatter/internal/models"
)

// Upload kinds determine the object prefix.
const (
	KindAvatar    = "avatar"
	KindPostImage = "post-image"
)

// UploadTicket is a presigned PUT URL plus the serving path the object will
// have once finalized.
type UploadTicket struct {
	UploadURL  string `json:"upload_url"`
	ObjectPath string `json:"object_path"`
}

// Service hands out upload tickets and finalizes uploaded objects.
type Service interface {
	UploadURL(ctx context.Context, kind string) (*UploadTicket, error)
	Finalize(ctx context.Context, rawURL string) (string, error)
}

type httpService struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewService returns a Service backed by a presign endpoint. Returns nil when
// the endpoint is unset, which disables uploads.
func NewService(endpoint, token string) Service {
	if endpoint == "" {
		return nil
	}
	return &httpService{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type presignRequest struct {
	ObjectPath string `json:"object_path"`
	Method     string `json:"method"`
	ExpiresIn  int    `json:"expires_in_seconds"`
}

type presignResponse struct {
	URL string `json:"url"`
}

// UploadURL requests a presigned PUT URL for a fresh object under the kind's
// prefix. The object name is random so uploads never collide.
func (s *httpService) UploadURL(ctx context.Context, kind string) (*UploadTicket, error) {
	switch kind {
	case KindAvatar, KindPostImage:
	default:
		return nil, models.NewValidationError("Unknown upload kind")
	}

	objectPath := fmt.Sprintf("/uploads/%s/%s", kind, uuid.NewString())

	raw, err := json.Marshal(presignRequest{
		ObjectPath: objectPath,
		Method:     http.MethodPut,
		ExpiresIn:  900,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.endpoint+"/presign", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("presign endpoint returned status %d", resp.StatusCode)
	}

	var parsed presignResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	if parsed.URL == "" {
		return nil, fmt.Errorf("presign endpoint returned an empty URL")
	}

	return &UploadTicket{UploadURL: parsed.URL, ObjectPath: objectPath}, nil
}

// Finalize converts the raw storage URL the client uploaded to into the
// stable serving path. Clients send back the presigned URL; we never store
// presigned URLs since they expire.
func (s *httpService) Finalize(_ context.Context, rawURL string) (string, error) {
	return NormalizeObjectPath(rawURL)
}

// NormalizeObjectPath strips the storage host and query from an uploaded
// object URL, leaving the /uploads/... path used for serving.
func NormalizeObjectPath(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", models.NewValidationError("URL is required")
	}

	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Path != "" {
		path = parsed.Path
	}

	idx := strings.Index(path, "/uploads/")
	if idx < 0 {
		return "", models.NewValidationError("URL does not reference an uploaded object")
	}
	return path[idx:], nil
}
