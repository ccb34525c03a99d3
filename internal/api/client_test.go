package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/mapsengine/gme-cli/internal/config"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/utils"
)

// testEnv is a fake Maps Engine API served by httptest
type testEnv struct {
	server  *httptest.Server
	client  *Client
	cfg     *config.UserConfig
	sleeps  []time.Duration
	mu      sync.Mutex
	handler http.HandlerFunc
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) *testEnv {
	t.Helper()

	env := &testEnv{handler: handler}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.handler(w, r)
	}))
	t.Cleanup(env.server.Close)

	cfg := config.DefaultConfig()
	cfg.APIProtocol = "http"
	cfg.APIDomain = strings.TrimPrefix(env.server.URL, "http://")
	cfg.UploadBaseURL = env.server.URL + "/upload/mapsengine/create_tt"
	cfg.APIKey = "api-key"
	cfg.RequestsPerSecond = 0
	env.cfg = cfg

	retrier := utils.NewRetrier(env.server.Client())
	retrier.Sleep = func(ctx context.Context, d time.Duration) error {
		env.mu.Lock()
		env.sleeps = append(env.sleeps, d)
		env.mu.Unlock()
		return ctx.Err()
	}
	retrier.Jitter = func() time.Duration { return 0 }

	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "ya29.token"})
	env.client = NewClient(cfg, tokens, WithHTTPClient(env.server.Client()), WithRetrier(retrier))
	return env
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestClient_Get(t *testing.T) {
	t.Run("sends oauth header and api key", func(t *testing.T) {
		var got *http.Request
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			got = r
			writeJSON(w, map[string]string{"ok": "yes"})
		})

		data, err := env.client.Get(context.Background(), "projects", nil)

		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":"yes"}`, string(data))
		assert.Equal(t, "OAuth ya29.token", got.Header.Get("Authorization"))
		assert.Equal(t, "api-key", got.URL.Query().Get("key"))
		assert.Equal(t, "/mapsengine/v1/projects", got.URL.Path)
	})

	t.Run("exhausted retries surface as request error", func(t *testing.T) {
		var calls int
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := env.client.Get(context.Background(), "projects", nil)

		assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
		assert.Equal(t, 5, calls)
		assert.Len(t, env.sleeps, 4)
	})

	t.Run("token source failure is reported", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		env.client.tokens = failingTokenSource{err: apperrors.New(apperrors.ErrSessionExpired, "get token", nil)}

		_, err := env.client.Get(context.Background(), "projects", nil)

		assert.ErrorIs(t, err, apperrors.ErrSessionExpired)
	})

	t.Run("writes debug dump without api key", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, Project{ID: "p1", Name: "One"})
		})
		dir := t.TempDir()
		env.client.dumpDir = dir

		_, err := env.client.Get(context.Background(), "maps/m1", nil)
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "mapsengine_v1_maps_m1.txt", entries[0].Name())
	})
}

type failingTokenSource struct {
	err error
}

func (f failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, f.err
}

func TestClient_Post(t *testing.T) {
	var form string
	var contentType string
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		form = string(body)
		writeJSON(w, map[string]string{})
	})

	_, err := env.client.Post(context.Background(), "maps/m1/publish", nil, map[string][]string{"force": {"true"}})

	require.NoError(t, err)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, "force=true", form)
}

func TestClient_ListMapsByProject(t *testing.T) {
	t.Run("follows three pages in order", func(t *testing.T) {
		pages := map[string]MapList{
			"":   {Maps: []Map{{ID: "m1"}, {ID: "m2"}}, NextPageToken: "p2"},
			"p2": {Maps: []Map{{ID: "m3"}}, NextPageToken: "p3"},
			"p3": {Maps: []Map{{ID: "m4"}, {ID: "m5"}}},
		}
		var tokens []string
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "proj", r.URL.Query().Get("projectId"))
			pageToken := r.URL.Query().Get("pageToken")
			tokens = append(tokens, pageToken)
			writeJSON(w, pages[pageToken])
		})

		maps, err := env.client.ListMapsByProject(context.Background(), "proj")

		require.NoError(t, err)
		ids := make([]string, 0, len(maps))
		for _, m := range maps {
			ids = append(ids, m.ID)
		}
		assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5"}, ids)
		assert.Equal(t, []string{"", "p2", "p3"}, tokens)
	})

	t.Run("repeated page token is an error", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, MapList{Maps: []Map{{ID: "m"}}, NextPageToken: "again"})
		})

		_, err := env.client.ListMapsByProject(context.Background(), "proj")

		assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
	})

	t.Run("invalid json is a request error", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{"))
		})

		_, err := env.client.ListMapsByProject(context.Background(), "proj")

		assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
	})
}

func TestClient_ListProjects(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, ProjectList{Projects: []Project{{ID: "a", Name: "A"}}, NextPageToken: "n"})
			return
		}
		writeJSON(w, ProjectList{Projects: []Project{{ID: "b", Name: "B"}}})
	})

	projects, err := env.client.ListProjects(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Project{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}, projects)
}

func TestClient_GetMapByID(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapsengine/v1/maps/m-1", r.URL.Path)
		w.Write([]byte(`{
			"id": "m-1",
			"name": "Roads",
			"bbox": [-10, -5, 10, 5],
			"folders": [{"name": "Base", "layers": [{"id": "l1", "name": "Streets"}]}],
			"layers": [{"id": "l2", "name": "Rivers"}]
		}`))
	})

	m, err := env.client.GetMapByID(context.Background(), "m-1")

	require.NoError(t, err)
	assert.Equal(t, "Roads", m.Name)
	assert.Equal(t, []float64{-10, -5, 10, 5}, m.Bbox)
	require.Len(t, m.Folders, 1)
	assert.Equal(t, "Streets", m.Folders[0].Layers[0].Name)
	assert.Equal(t, "l2", m.Layers[0].ID)
}

func TestClient_GetAssetByID(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/mapsengine/v1/assets/a1", r.URL.Path)
		writeJSON(w, Asset{ID: "a1", Name: "Parcels", Type: AssetTypeTable})
	})

	asset, err := env.client.GetAssetByID(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, AssetTypeTable, asset.Type)
}

func TestClient_CreateAssetsForUploading(t *testing.T) {
	t.Run("vector table", func(t *testing.T) {
		var body map[string]interface{}
		var path, projectID string
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			projectID = r.URL.Query().Get("projectId")
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, UploadingAsset{ID: "asset-1"})
		})

		asset, err := env.client.CreateVectorTableAssetForUploading(context.Background(), VectorTableAsset{
			ProjectID:       "proj",
			Name:            "Roads",
			Description:     "All roads",
			Files:           FileNames([]string{"roads.shp", "roads.dbf"}),
			DraftAccessList: "Map Editors",
			SourceEncoding:  "UTF-8",
			Tags:            []string{"transport"},
		})

		require.NoError(t, err)
		assert.Equal(t, "asset-1", asset.ID)
		assert.Equal(t, "/mapsengine/create_tt/tables/upload", path)
		assert.Equal(t, "proj", projectID)
		assert.Equal(t, "Roads", body["name"])
		assert.Equal(t, "UTF-8", body["sourceEncoding"])
		assert.Equal(t, "Map Editors", body["draftAccessList"])
		assert.Len(t, body["files"], 2)
	})

	t.Run("raster", func(t *testing.T) {
		var body map[string]interface{}
		var path string
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, UploadingAsset{ID: "raster-1"})
		})

		asset, err := env.client.CreateRasterAssetForUploading(context.Background(), RasterAsset{
			ProjectID:       "proj",
			Name:            "Imagery",
			Files:           FileNames([]string{"scene.tif"}),
			Attribution:     "Survey Co",
			AcquisitionTime: "2013-01-01T00:00:00Z",
			MaskType:        "autoMask",
		})

		require.NoError(t, err)
		assert.Equal(t, "raster-1", asset.ID)
		assert.Equal(t, "/mapsengine/create_tt/rasters/upload", path)
		assert.Equal(t, "Survey Co", body["attribution"])
		assert.Equal(t, "autoMask", body["maskType"])
	})

	t.Run("missing id in response", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{})
		})

		_, err := env.client.CreateRasterAssetForUploading(context.Background(), RasterAsset{ProjectID: "p"})

		assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
	})

	t.Run("project is required", func(t *testing.T) {
		env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := env.client.CreateVectorTableAssetForUploading(context.Background(), VectorTableAsset{Name: "x"})

		assert.ErrorIs(t, err, apperrors.ErrAPIRequest)
	})
}

func TestClient_RateLimit(t *testing.T) {
	var calls int
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeJSON(w, ProjectList{})
	})
	env.cfg.RequestsPerSecond = 1000
	limited := NewClient(env.cfg, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"}), WithHTTPClient(env.server.Client()))
	require.NotNil(t, limited.limiter)

	for i := 0; i < 3; i++ {
		_, err := limited.ListProjects(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)
}

func ExampleUploadName() {
	fmt.Println(UploadName("roads.2013.shp"))
	fmt.Println(UploadName(filepath.Base("/data/README")))
	// Output:
	// roads
	// README
}
