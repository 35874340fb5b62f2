package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "updates": [{
    "id": "u1",
    "title": "Dark mode",
    "summary": "You can now switch to **dark mode**.",
    "publishedAt": "2024-06-15T10:00:00Z",
    "url": "https://chglog.app/demo/u1",
    "author": {"name": "Jane Doe", "avatar": "https://example.com/jane.png"}
  }],
  "repository": {"name": "Demo", "slug": "demo"}
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL + "/api/public/v1/whats-new", RatePerSec: 100, UserAgent: "whatsnew/test"})
	require.NoError(t, err)
	return c
}

func TestFetchLatest_Success(t *testing.T) {
	var gotPath, gotQuery, gotAccept, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleBody))
	})

	resp, err := c.FetchLatest(context.Background(), "demo")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "/api/public/v1/whats-new/demo", gotPath)
	assert.Equal(t, "format=summary&limit=1", gotQuery)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "whatsnew/test", gotUA)

	latest := resp.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, "u1", latest.ID)
	assert.Equal(t, "Dark mode", latest.Title)
	assert.Equal(t, "2024-06-15T10:00:00Z", latest.PublishedAt)
	require.NotNil(t, latest.Author)
	assert.Equal(t, "Jane Doe", latest.Author.Name)
	assert.Nil(t, latest.Repository)
	assert.Equal(t, "Demo", resp.RepositoryName(latest))
}

func TestFetchLatest_EscapesRepository(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"updates":[]}`))
	})

	_, err := c.FetchLatest(context.Background(), "acme/widgets tool")
	require.NoError(t, err)
	assert.Equal(t, "/api/public/v1/whats-new/acme%2Fwidgets%20tool", gotPath)
}

func TestFetchLatest_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	resp, err := c.FetchLatest(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Nil(t, resp.Latest())
}

func TestFetchLatest_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	resp, err := c.FetchLatest(context.Background(), "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Nil(t, resp)
}

func TestFetchLatest_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"updates": [`))
	})

	_, err := c.FetchLatest(context.Background(), "demo")
	assert.Error(t, err)
}

func TestFetchLatest_ContextCancelled(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(sampleBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchLatest(ctx, "demo")
	require.Error(t, err)
	assert.Zero(t, calls.Load())
}

func TestFetchLatest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.FetchLatest(context.Background(), "demo")
	assert.Error(t, err)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "ftp://example.com"})
	require.Error(t, err)

	c, err := NewClient(Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL+"/demo?format=summary&limit=1", c.LatestURL("demo"))
}

func TestResponse_RepositoryName(t *testing.T) {
	var nilResp *Response
	assert.Empty(t, nilResp.RepositoryName(nil))

	resp := &Response{Repository: RepositoryInfo{Slug: "demo"}}
	assert.Equal(t, "demo", resp.RepositoryName(nil))

	u := &Update{Repository: &Person{Name: "Override"}}
	assert.Equal(t, "Override", resp.RepositoryName(u))
}
