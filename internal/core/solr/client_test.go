package solr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return srv, New(Config{BaseURL: srv.URL})
}

func TestDisabledClient(t *testing.T) {
	client := New(Config{})

	assert.False(t, client.Enabled())
	assert.ErrorIs(t, client.Ping(context.Background()), ErrClientDisabled)
	assert.ErrorIs(t, client.Index(context.Background(), NewIndexDocument("x")), ErrClientDisabled)

	_, err := client.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrClientDisabled)
}

func TestIndexSendsDocuments(t *testing.T) {
	var received []map[string]interface{}

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, updatePath, r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("commit"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	})

	doc := NewIndexDocument("claim:c1").SetField("content", "the empire overextended")
	require.NoError(t, client.Index(context.Background(), doc))

	require.Len(t, received, 1)
	assert.Equal(t, "claim:c1", received[0]["id"])
	assert.Equal(t, "the empire overextended", received[0]["content"])
}

func TestIndexTreatsConflictAsSuccess(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(httpStatusConflict)
	})

	assert.NoError(t, client.Index(context.Background(), NewIndexDocument("claim:c1")))
}

func TestIndexServerError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Index(context.Background(), NewIndexDocument("claim:c1"))
	assert.ErrorIs(t, err, ErrServerError)
}

func TestSearchParsesResponse(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, selectPath, r.URL.Path)
		require.Equal(t, "collapse", r.URL.Query().Get("q"))

		resp := SearchResponse{
			Response: ResponseBody{
				NumFound: 2,
				Docs: []Document{
					{ID: "claim:c1"},
					{ID: "video:v1"},
				},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	resp, err := client.Search(context.Background(), "collapse")
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Response.NumFound)
	require.Len(t, resp.Response.Docs, 2)
	assert.Equal(t, "claim:c1", resp.Response.Docs[0].ID)
}

func TestGraphIndexerTranslatesErrors(t *testing.T) {
	indexer := NewGraphIndexer(New(Config{}))

	claim := &domain.Claim{ID: "c1", VideoID: "v1", Text: "text"}
	assert.ErrorIs(t, indexer.IndexClaim(context.Background(), claim), apperrors.ErrIndexerDisabled)

	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	unavailable := NewGraphIndexer(client)
	unavailable.retry = RetryConfig{MaxRetries: 1, InitialDelay: 1}

	assert.ErrorIs(t, unavailable.IndexClaim(context.Background(), claim), apperrors.ErrIndexerUnavailable)
}

func TestGraphIndexerSearch(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "edismax", r.URL.Query().Get("defType"))

		resp := SearchResponse{
			Response: ResponseBody{
				NumFound: 1,
				Docs:     []Document{{ID: "claim:c1"}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})

	ids, err := NewGraphIndexer(client).Search(context.Background(), "bronze age", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"claim:c1"}, ids)
}
