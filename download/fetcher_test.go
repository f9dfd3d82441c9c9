package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/santiagomed/devtut/logger"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFetcher(t *testing.T) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/integration.ts":
			_, _ = io.WriteString(w, "export const integration = true;\n")
		case "/app.ts":
			_, _ = io.WriteString(w, "console.log('app');\n")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	f := NewFetcher(afero.NewMemMapFs(), "vonage-toolbar", logger.NewNullLogger())
	f.HTTP = srv.Client()
	return f, srv
}

func TestDefaultAssets(t *testing.T) {
	require.Len(t, DefaultAssets, 2)
	assert.Equal(t, "integration.ts", DefaultAssets[0].Name)
	assert.Equal(t, rawBase+"integration.ts", DefaultAssets[0].URL)
	assert.Equal(t, "app.ts", DefaultAssets[1].Name)
}

func TestFetchWritesFileAndReportsProgress(t *testing.T) {
	f, srv := newFetcher(t)

	var last float64
	res := f.Fetch(context.Background(), Asset{URL: srv.URL + "/app.ts", Name: "app.ts"}, func(p float64) { last = p })
	require.NoError(t, res.Err)
	assert.Equal(t, 1.0, last)

	data, err := afero.ReadFile(f.Fs, "vonage-toolbar/app.ts")
	require.NoError(t, err)
	assert.Equal(t, "console.log('app');\n", string(data))
	assert.Equal(t, int64(len(data)), res.Bytes)
}

func TestFetchAllFailuresAreIndependent(t *testing.T) {
	f, srv := newFetcher(t)

	results := f.FetchAll(context.Background(), []Asset{
		{URL: srv.URL + "/missing.ts", Name: "missing.ts"},
		{URL: srv.URL + "/integration.ts", Name: "integration.ts"},
	})
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "404")
	ok, _ := afero.Exists(f.Fs, "vonage-toolbar/missing.ts")
	assert.False(t, ok)

	assert.NoError(t, results[1].Err)
	ok, _ = afero.Exists(f.Fs, "vonage-toolbar/integration.ts")
	assert.True(t, ok)
}

func TestFetchUnreachableHost(t *testing.T) {
	f, srv := newFetcher(t)
	url := srv.URL + "/app.ts"
	srv.Close()

	res := f.Fetch(context.Background(), Asset{URL: url, Name: "app.ts"}, nil)
	assert.Error(t, res.Err)
}
