package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient("acme", "users-store", "users.json", "tok").WithBaseURL(url)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/acme/users-store/contents/users.json", r.URL.Path)
		assert.Equal(t, "token tok", r.Header.Get("Authorization"))

		// GitHub wraps base64 with newlines.
		enc := base64.StdEncoding.EncodeToString([]byte(`{"israel":{}}`))
		wrapped := enc[:8] + "\n" + enc[8:] + "\n"
		_ = json.NewEncoder(w).Encode(map[string]string{
			"content": wrapped,
			"sha":     "abc123",
		})
	}))
	defer srv.Close()

	doc, err := newTestClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"israel":{}}`, string(doc.Content))
	assert.Equal(t, "abc123", doc.SHA)
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrTransient)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestPut(t *testing.T) {
	var got struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "def456"},
		})
	}))
	defer srv.Close()

	newSHA, err := newTestClient(srv.URL).Put(context.Background(), []byte(`{}`), "abc123", "Update users.json")
	require.NoError(t, err)
	assert.Equal(t, "def456", newSHA)
	assert.Equal(t, "Update users.json", got.Message)
	assert.Equal(t, "abc123", got.SHA)

	raw, err := base64.StdEncoding.DecodeString(got.Content)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(raw))
}

func TestPutCreateOnlyOmitsSHA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasSHA := body["sha"]
		assert.False(t, hasSHA)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": map[string]string{"sha": "first"},
		})
	}))
	defer srv.Close()

	newSHA, err := newTestClient(srv.URL).Put(context.Background(), []byte(`{}`), "", "Initial users.json creation")
	require.NoError(t, err)
	assert.Equal(t, "first", newSHA)
}

func TestPutStaleRevision(t *testing.T) {
	for _, status := range []int{http.StatusConflict, http.StatusUnprocessableEntity} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		_, err := newTestClient(srv.URL).Put(context.Background(), []byte(`{}`), "old", "msg")
		assert.ErrorIs(t, err, ErrStaleRevision)
		srv.Close()
	}
}

func TestTransportErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, err, ErrTransient)
}
