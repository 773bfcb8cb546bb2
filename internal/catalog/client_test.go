package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/shop-1/api/shows", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		_ = json.NewEncoder(w).Encode(ShowsResponse{Shows: []Show{
			{
				ID:          101,
				Name:        "Swan Lake",
				DetailedURL: "https://example.com/creations/performance/101/",
				Events: []Event{
					{ID: 5001, Name: "Evening show", Building: &Building{ID: 7, Name: "Grand Hall"}},
				},
				ShowCategories: []ShowCategory{{Name: "ballet"}},
			},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	out, err := c.FetchCatalog(context.Background(), "shop-1")
	require.NoError(t, err)
	require.Len(t, out.Shows, 1)

	show := out.Shows[0]
	assert.Equal(t, int64(101), show.ID)
	assert.Equal(t, "Swan Lake", show.Name)
	require.Len(t, show.Events, 1)
	require.NotNil(t, show.Events[0].Building)
	assert.Equal(t, "Grand Hall", show.Events[0].Building.Name)
	require.Len(t, show.ShowCategories, 1)
	assert.Equal(t, "ballet", show.ShowCategories[0].Name)
}

func TestFetchCatalogNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	_, err := c.FetchCatalog(context.Background(), "shop-1")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchCatalogBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	_, err := c.FetchCatalog(context.Background(), "shop-1")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestFetchCatalogConnectionRefused(t *testing.T) {
	// Grab a port that is guaranteed closed.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, zap.NewNop())
	_, err := c.FetchCatalog(context.Background(), "shop-1")
	require.ErrorIs(t, err, ErrUpstreamUnavailable)
}
