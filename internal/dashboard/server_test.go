package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cotflow/config"
)

func testRouter(t *testing.T, store *Store) http.Handler {
	t.Helper()
	srv, err := NewServer(config.ServerConfig{Enabled: true, Address: ":9000"}, store, "cotflow", "test")
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	router, err := srv.buildRouter()
	if err != nil {
		t.Fatalf("buildRouter returned error: %v", err)
	}
	return router
}

func TestNormalizeAddress(t *testing.T) {
	cases := map[string]string{
		"":                           "0.0.0.0:8090",
		"  :9090  ":                  "0.0.0.0:9090",
		"localhost":                  "localhost:8090",
		"0.0.0.0:80":                 "0.0.0.0:80",
		"[::1]:443":                  "[::1]:443",
		"::1":                        "[::1]:8090",
		"*:8090":                     "0.0.0.0:8090",
		"http://13.200.112.203:8080": "13.200.112.203:8080",
		"http://:7070":               "0.0.0.0:7070",
		"tcp://localhost:5050":       "localhost:5050",
	}

	for input, want := range cases {
		if got := normalizeAddress(input); got != want {
			t.Fatalf("normalizeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNewServerDisabled(t *testing.T) {
	srv, err := NewServer(config.ServerConfig{Enabled: false}, NewStore(), "cotflow", "test")
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	if srv != nil {
		t.Fatal("expected nil server when disabled")
	}
	if srv.Address() != "" {
		t.Error("nil server must report an empty address")
	}
}

func TestServerRootReportsSnapshot(t *testing.T) {
	router := testRouter(t, publishedStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload struct {
		Service  string `json:"service"`
		Snapshot struct {
			ID          string `json:"id"`
			RecordCount int    `json:"record_count"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Service != "cotflow" {
		t.Errorf("unexpected service name: %s", payload.Service)
	}
	if payload.Snapshot.ID != "snap-1" || payload.Snapshot.RecordCount != 5 {
		t.Errorf("unexpected snapshot info: %+v", payload.Snapshot)
	}
}

func TestServerAssetsEndpoint(t *testing.T) {
	router := testRouter(t, publishedStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload struct {
		Assets []AssetInfo `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(payload.Assets))
	}
}

func TestServerAssetsBeforePublish(t *testing.T) {
	router := testRouter(t, NewStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before first publish, got %d", rec.Code)
	}
	// The body distinguishes "never ingested" from a plain asset miss.
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error != ErrNoDataset.Error() {
		t.Errorf("unexpected error body: %q", payload.Error)
	}
}

func TestServerSeriesEndpoint(t *testing.T) {
	router := testRouter(t, publishedStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/GOLD%20-%20CME%20(GC)", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload struct {
		Series []AssetObservation `json:"series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Series) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(payload.Series))
	}
}

func TestServerSeriesUnknownAsset(t *testing.T) {
	router := testRouter(t, publishedStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/Cacau", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown asset, got %d", rec.Code)
	}
}

func TestServerSummaryEndpoint(t *testing.T) {
	router := testRouter(t, publishedStore())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/assets/EURO%20FX%20-%20CME/summary", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var summary AssetSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Identifier != "EURO FX - CME" {
		t.Errorf("unexpected identifier: %s", summary.Identifier)
	}
	if summary.FriendlyName != "Euro (EUR)" {
		t.Errorf("unexpected friendly name: %s", summary.FriendlyName)
	}
	if summary.PeriodDelta != 15 {
		t.Errorf("unexpected period delta: %d", summary.PeriodDelta)
	}
}
