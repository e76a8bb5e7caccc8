package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/config"
	"github.com/BerkeYazan/Resource-Mismatch-Analysis/internal/logging"
)

func testConfig(t *testing.T, driver string) *config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Data.Store = driver
	return cfg
}

func TestNewServer_Stores(t *testing.T) {
	for _, driver := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(driver, func(t *testing.T) {
			cfg := testConfig(t, driver)
			srv, err := NewServer(cfg, logging.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"store":"`+driver+`"`)

			if driver == config.StoreSQLite {
				assert.FileExists(t, config.DBPath(cfg))
			}
			assert.DirExists(t, filepath.Join(cfg.Data.DataDir, "exports"))
		})
	}
}

func TestNewServer_UnknownStore(t *testing.T) {
	_, err := NewServer(testConfig(t, "redis"), logging.Nop())
	require.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	srv, err := NewServer(cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLoadTables_ExternalFile(t *testing.T) {
	cfg := testConfig(t, config.StoreMemory)
	path := filepath.Join(cfg.Data.DataDir, "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resources:\n  - {pattern: \"labne\", name: \"LABNE\"}\n"), 0o644))
	cfg.Analysis.TablesPath = "tables.yaml"

	tables, err := LoadTables(cfg)
	require.NoError(t, err)
	require.Len(t, tables.Resources, 1)
	assert.Equal(t, "LABNE", tables.Resources[0].Name)

	cfg.Analysis.TablesPath = "missing.yaml"
	_, err = LoadTables(cfg)
	require.Error(t, err)
}
