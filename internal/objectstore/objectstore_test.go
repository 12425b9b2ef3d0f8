package objectstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeObjectPath(t *testing.T) {
	tests := []struct {
		name    string
		rawURL  string
		want    string
		wantErr bool
	}{
		{
			name:   "full storage URL",
			rawURL: "https://storage.example.com/bucket/uploads/avatar/abc123?sig=xyz",
			want:   "/uploads/avatar/abc123",
		},
		{
			name:   "bare path",
			rawURL: "/uploads/post-image/def456",
			want:   "/uploads/post-image/def456",
		},
		{
			name:    "not an upload",
			rawURL:  "https://storage.example.com/bucket/other/abc",
			wantErr: true,
		},
		{
			name:    "empty",
			rawURL:  " ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeObjectPath(tt.rawURL)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestUploadURL(t *testing.T) {
	var gotAuth string
	var gotReq presignRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(presignResponse{URL: "https://storage.example.com" + gotReq.ObjectPath + "?sig=abc"})
	}))
	defer ts.Close()

	svc := NewService(ts.URL, "secret")
	ticket, err := svc.UploadURL(context.Background(), KindAvatar)
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, http.MethodPut, gotReq.Method)
	assert.True(t, strings.HasPrefix(ticket.ObjectPath, "/uploads/avatar/"))
	assert.Contains(t, ticket.UploadURL, ticket.ObjectPath)
}

func TestUploadURL_RejectsUnknownKind(t *testing.T) {
	svc := NewService("http://localhost:1", "")
	_, err := svc.UploadURL(context.Background(), "malware")
	assert.Error(t, err)
}

func TestNewService_DisabledWithoutEndpoint(t *testing.T) {
	assert.Nil(t, NewService("", "token"))
}
