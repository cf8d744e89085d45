package dl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func launcherServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		manifest := VersionManifest{
			Versions: []Version{
				{Id: "1.20.2", Type: "release", URL: srv.URL + "/1.20.2.json"},
				{Id: "1.19.4", Type: "release", URL: srv.URL + "/1.19.4.json"},
			},
		}
		manifest.Latest.Release = "1.20.2"
		json.NewEncoder(w).Encode(manifest)
	})
	mux.HandleFunc("/1.20.2.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VersionMetadata{
			Downloads: map[string]*DownloadMetadata{
				"client": {URL: srv.URL + "/client-1.20.2.jar"},
			},
		})
	})
	mux.HandleFunc("/1.19.4.json", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(VersionMetadata{})
	})
	mux.HandleFunc("/client-1.20.2.jar", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jar bytes"))
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testClient(srv *httptest.Server) *Client {
	c := NewClient()
	c.HTTP = srv.Client()
	c.ManifestURL = srv.URL + "/manifest.json"
	return c
}

func TestDownloadClientJar(t *testing.T) {
	c := testClient(launcherServer(t))
	dir := t.TempDir()

	for _, version := range []string{"", "1.20.2"} {
		path := filepath.Join(dir, "client-"+version+".jar")
		require.NoError(t, c.DownloadClientJar(context.Background(), version, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "jar bytes", string(data))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestDownloadClientJarErrors(t *testing.T) {
	c := testClient(launcherServer(t))
	dir := t.TempDir()

	err := c.DownloadClientJar(context.Background(), "0.0.1", filepath.Join(dir, "a.jar"))
	assert.ErrorContains(t, err, "unknown minecraft version")

	err = c.DownloadClientJar(context.Background(), "1.19.4", filepath.Join(dir, "b.jar"))
	assert.ErrorContains(t, err, "no client download")

	c.ManifestURL = c.ManifestURL + ".missing"
	err = c.DownloadClientJar(context.Background(), "", filepath.Join(dir, "c.jar"))
	assert.ErrorContains(t, err, "404")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
