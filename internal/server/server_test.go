package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glint-tools/carbon/internal/project"
)

func newProject(t *testing.T) *project.Project {
	t.Helper()

	p := project.New()
	c := project.NewCollection("Characters")
	require.True(t, p.AddCollection(c))

	character := project.NewObject("Character", true)
	hero := project.NewObject("Hero", false)
	require.True(t, c.AddObject(nil, character))
	require.True(t, c.AddObject(character, hero))

	health := project.NewNumberField("Health", 10)
	require.True(t, c.CreateField(character, health))
	require.True(t, c.OverrideField(hero, health, nil).SetData(100))
	return p
}

func newTestServer(t *testing.T, load Loader) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(load, slog.New(slog.DiscardHandler)))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestRoutes(t *testing.T) {
	p := newProject(t)
	srv := newTestServer(t, func(context.Context) (*project.Project, error) { return p, nil })

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"health", "/healthz", http.StatusOK, "application/json", `{"status":"ok"}`},
		{"project", "/api/project", http.StatusOK, "application/json",
			`{"Characters":{"Character":{"Hero":{"health":100}}}}`},
		{"collection", "/api/collections/Characters", http.StatusOK, "application/json",
			`{"Character":{"Hero":{"health":100}}}`},
		{"instance", "/api/collections/Characters/objects/Character/Hero", http.StatusOK, "application/json",
			`{"health":100}`},
		{"type", "/api/collections/Characters/objects/Character", http.StatusOK, "application/json",
			`{"Hero":{"health":100}}`},
		{"unknown collection", "/api/collections/Items", http.StatusNotFound, "application/json", ""},
		{"unknown object", "/api/collections/Characters/objects/Nobody", http.StatusNotFound, "application/json", ""},
		{"bad format", "/api/project?format=sqlite", http.StatusBadRequest, "application/json", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv, tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.contentType, resp.Header.Get("Content-Type"))
			if tt.body != "" {
				assert.JSONEq(t, tt.body, string(body))
			}
		})
	}
}

func TestYAMLFormat(t *testing.T) {
	p := newProject(t)
	srv := newTestServer(t, func(context.Context) (*project.Project, error) { return p, nil })

	resp, body := get(t, srv, "/api/collections/Characters/objects/Character/Hero?format=yaml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "health: 100\n", string(body))
}

func TestListCollections(t *testing.T) {
	p := newProject(t)
	srv := newTestServer(t, func(context.Context) (*project.Project, error) { return p, nil })

	_, body := get(t, srv, "/api/collections")
	var got []collectionSummary
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Characters", got[0].Name)
	assert.Equal(t, 2, got[0].Objects)
	assert.Equal(t, 1, got[0].Types)
}

func TestDescribe(t *testing.T) {
	p := newProject(t)
	srv := newTestServer(t, func(context.Context) (*project.Project, error) { return p, nil })

	resp, body := get(t, srv, "/api/collections/Characters/describe/Character/Hero")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "<h1>Hero</h1>")
	assert.Contains(t, string(body), "<table>")

	resp, body = get(t, srv, "/api/collections/Characters/describe/Character/Hero?format=markdown")
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "# Hero\n")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing", fmt.Errorf("load: %w", fs.ErrNotExist), http.StatusNotFound, "PROJECT_NOT_FOUND"},
		{"corrupt", errors.New("failed to parse project file"), http.StatusInternalServerError, "LOAD_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(context.Context) (*project.Project, error) { return nil, tt.err })

			resp, body := get(t, srv, "/api/project")
			assert.Equal(t, tt.status, resp.StatusCode)
			var got map[string]string
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.code, got["code"])
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Addr: "127.0.0.1:0",
			Load: func(context.Context) (*project.Project, error) { return project.New(), nil },
		})
	}()
	cancel()
	assert.NoError(t, <-done)
}

func TestRunNeedsLoader(t *testing.T) {
	assert.Error(t, Run(context.Background(), Config{}))
}
