package images

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://media.example.com/blobs/abc123.png", "abc123"},
		{"https://media.example.com/blobs/abc123", "abc123"},
		{"https://media.example.com/a/b/c/deep.file.webp", "deep.file"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, PublicID(tt.url), tt.url)
	}
}

func TestPassthrough(t *testing.T) {
	up := NewClient("", "")
	ctx := context.Background()

	url, err := up.Upload(ctx, "data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", url)
	assert.NoError(t, up.Destroy(ctx, "anything"))
}

func TestClient_Upload(t *testing.T) {
	var gotAuth, gotSource, gotPublicID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotSource = body["source"]
		gotPublicID = body["public_id"]

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url": "https://media.example.com/blobs/" + body["public_id"] + ".png",
		})
	}))
	defer srv.Close()

	up := NewClient(srv.URL, "secret-key")
	url, err := up.Upload(context.Background(), "data:image/png;base64,AAAA")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "data:image/png;base64,AAAA", gotSource)
	assert.NotEmpty(t, gotPublicID, "every upload gets a fresh public ID")
	assert.Contains(t, url, gotPublicID)
	assert.Equal(t, gotPublicID, PublicID(url), "the ID must be derivable from the stored URL")
}

func TestClient_UploadErrors(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").Upload(context.Background(), "src")
		assert.ErrorContains(t, err, "unexpected status 503")
	})

	t.Run("missing url in response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]string{})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, "k").Upload(context.Background(), "src")
		assert.ErrorContains(t, err, "no URL")
	})
}

func TestClient_Destroy(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	up := NewClient(srv.URL, "k")
	require.NoError(t, up.Destroy(context.Background(), "abc123"))
	assert.Equal(t, "/media/abc123", gotPath)
}

func TestClient_DestroyBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k").Destroy(context.Background(), "abc123")
	assert.ErrorContains(t, err, "unexpected status 404")
}
