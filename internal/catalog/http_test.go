package catalog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"ProductAdmin/internal/auth"
	"ProductAdmin/internal/catalog"
	"ProductAdmin/internal/storage"
)

const (
	testSecret   = "test-secret"
	testPassword = "hunter22"
)

type tsOpts struct {
	auth         bool
	registry     *prometheus.Registry
	metricsToken string
}

func newCatalogTS(t *testing.T, o tsOpts) *httptest.Server {
	t.Helper()

	gen := catalog.NewGenerator(rand.New(rand.NewPCG(7, 7)))
	store := catalog.NewLocalStore(storage.NewMemKV(), catalog.StoreOptions{
		Seed: func() []catalog.Product { return gen.Generate(catalog.DefaultSeedSize) },
		Log:  zap.NewNop(),
	})
	svc := catalog.NewService(store, zap.NewNop(), 0)
	c := catalog.NewContainer(svc, zap.NewNop())
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s := &catalog.Server{Service: svc, Container: c, Log: zap.NewNop()}
	deps := catalog.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "catalog",
		Registry:       o.registry,
		MetricsEnabled: o.registry != nil,
		MetricsToken:   o.metricsToken,
	}

	if o.auth {
		admin, err := auth.NewAdmin("admin", testPassword)
		if err != nil {
			t.Fatalf("NewAdmin: %v", err)
		}
		tm := auth.NewTokenMaker(testSecret)
		as := auth.NewServer(zap.NewNop(), admin, tm, time.Minute)
		s.Guard = auth.RequireAdmin(tm)
		deps.Auth = as.Routes()
	}

	ts := httptest.NewServer(catalog.NewHandler(s, deps))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			r = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			r = bytes.NewReader(b)
		}
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, raw []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want %d body=%s", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, raw)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	for _, p := range []string{"/healthz", "/readyz"} {
		resp, raw := doJSON(t, http.MethodGet, ts.URL+p, nil, nil)
		expectStatus(t, resp, raw, http.StatusOK)
	}
}

func TestHTTP_ListFirstPage(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)

	page := decode[catalog.Page](t, raw)
	if page.Total != 50 || len(page.Products) != 12 || page.Products[0].ID != 1 || page.Products[11].ID != 12 {
		t.Fatalf("page %+v", page)
	}
	if resp.Header.Get("ETag") == "" {
		t.Fatal("missing ETag")
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products?page=5&limit=12", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if last := decode[catalog.Page](t, raw); len(last.Products) != 2 || last.TotalPages != 5 {
		t.Fatalf("last page %+v", last)
	}
}

func TestHTTP_ListPageBeyondRange(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	for _, q := range []string{"?page=4611686018427387904&limit=4", "?page=9223372036854775807&limit=9223372036854775807"} {
		resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products"+q, nil, nil)
		expectStatus(t, resp, raw, http.StatusOK)
		if p := decode[catalog.Page](t, raw); len(p.Products) != 0 || p.Total != 50 {
			t.Fatalf("%s: %+v", q, p)
		}
	}

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/state", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if st := decode[catalog.State](t, raw); st.Loading || st.Error != "" {
		t.Fatalf("state stuck: %+v", st)
	}
}

func TestHTTP_ListBadParams(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	for _, q := range []string{"?page=abc", "?limit=1.5", "?page=0", "?limit=-2"} {
		resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products"+q, nil, nil)
		expectStatus(t, resp, raw, http.StatusBadRequest)
	}
}

func TestHTTP_GetProduct(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/3", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if p := decode[catalog.Product](t, raw); p.ID != 3 {
		t.Fatalf("got %+v", p)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products/999", nil, nil)
	expectStatus(t, resp, raw, http.StatusNotFound)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products/abc", nil, nil)
	expectStatus(t, resp, raw, http.StatusBadRequest)
}

func TestHTTP_CreateUpdateDelete(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name": "Keyboard", "description": "mechanical", "price": 89.9, "stock": 12, "category": "Computers",
	}, nil)
	expectStatus(t, resp, raw, http.StatusCreated)

	res := decode[catalog.Result](t, raw)
	if !res.Success || res.Data == nil || res.Data.ID != 51 || res.Data.ImageURL != catalog.DefaultImageURL {
		t.Fatalf("create %+v", res)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/state", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if st := decode[catalog.State](t, raw); st.Total != 51 || st.Products[0].ID != 51 {
		t.Fatalf("state %+v", st)
	}

	resp, raw = doJSON(t, http.MethodPut, ts.URL+"/products/51", map[string]any{"stock": 0}, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if res = decode[catalog.Result](t, raw); !res.Success || res.Data.Stock != 0 || res.Data.Name != "Keyboard" {
		t.Fatalf("update %+v", res)
	}

	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/51", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/51", nil, nil)
	expectStatus(t, resp, raw, http.StatusNotFound)
	if res = decode[catalog.Result](t, raw); res.Success || res.Error == "" {
		t.Fatalf("missing delete %+v", res)
	}
}

func TestHTTP_UpdateMissing(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodPut, ts.URL+"/products/777", map[string]any{"name": "x"}, nil)
	expectStatus(t, resp, raw, http.StatusNotFound)
	if res := decode[catalog.Result](t, raw); res.Success {
		t.Fatalf("got %+v", res)
	}
}

func TestHTTP_RejectsBadBodies(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	cases := []string{
		`{"name":"x","colour":"red"}`,
		`{"name":"x"}{"name":"y"}`,
		`not json`,
		`{"price":"cheap"}`,
	}
	for _, body := range cases {
		resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", body, nil)
		expectStatus(t, resp, raw, http.StatusBadRequest)
	}
}

func TestHTTP_IfMatch(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/products", nil, nil)
	etag := resp.Header.Get("ETag")

	resp, raw := doJSON(t, http.MethodDelete, ts.URL+"/products/1", nil, map[string]string{"If-Match": `"stale"`})
	expectStatus(t, resp, raw, http.StatusPreconditionFailed)

	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/1", nil, map[string]string{"If-Match": etag})
	expectStatus(t, resp, raw, http.StatusOK)
	if next := resp.Header.Get("ETag"); next == "" || next == etag {
		t.Fatalf("ETag not advanced: %q -> %q", etag, next)
	}

	// The old tag is now stale.
	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/2", nil, map[string]string{"If-Match": etag})
	expectStatus(t, resp, raw, http.StatusPreconditionFailed)
}

func TestHTTP_StatsAndLookups(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/stats", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	st := decode[catalog.Stats](t, raw)
	if st.Total != 50 || st.InStock+st.OutOfStock != 50 {
		t.Fatalf("stats %+v", st)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/categories", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if cats := decode[[]string](t, raw); len(cats) != len(catalog.Categories) {
		t.Fatalf("categories %v", cats)
	}

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/images", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if imgs := decode[[]catalog.Image](t, raw); len(imgs) != len(catalog.ImagePool()) {
		t.Fatalf("images %d", len(imgs))
	}
}

func TestHTTP_Export(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{})

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/products/export.xlsx", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content-type %q", ct)
	}
	// xlsx is a zip archive
	if !bytes.HasPrefix(raw, []byte("PK")) {
		t.Fatal("not a zip payload")
	}
}

func TestHTTP_AuthGuardsMutations(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{auth: true})

	resp, raw := doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{"name": "x"}, nil)
	expectStatus(t, resp, raw, http.StatusUnauthorized)

	resp, raw = doJSON(t, http.MethodDelete, ts.URL+"/products/1", nil, map[string]string{"Authorization": "Bearer junk"})
	expectStatus(t, resp, raw, http.StatusUnauthorized)

	// reads stay open
	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/products", nil, nil)
	expectStatus(t, resp, raw, http.StatusOK)

	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/auth/login", map[string]any{"username": "admin", "password": "wrong"}, nil)
	expectStatus(t, resp, raw, http.StatusUnauthorized)

	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/auth/login", map[string]any{"username": "admin", "password": testPassword}, nil)
	expectStatus(t, resp, raw, http.StatusOK)
	login := decode[struct {
		AccessToken string `json:"access_token"`
	}](t, raw)
	if login.AccessToken == "" {
		t.Fatal("empty access_token")
	}

	bearer := map[string]string{"Authorization": "Bearer " + login.AccessToken}
	resp, raw = doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{"name": "x"}, bearer)
	expectStatus(t, resp, raw, http.StatusCreated)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/auth/whoami", nil, bearer)
	expectStatus(t, resp, raw, http.StatusOK)
	if who := decode[map[string]string](t, raw); who["username"] != "admin" || who["role"] != auth.RoleAdmin {
		t.Fatalf("whoami %v", who)
	}
}

func TestHTTP_Metrics(t *testing.T) {
	ts := newCatalogTS(t, tsOpts{registry: prometheus.NewRegistry(), metricsToken: "scrape"})

	_, _ = doJSON(t, http.MethodGet, ts.URL+"/products/4", nil, nil)

	resp, raw := doJSON(t, http.MethodGet, ts.URL+"/metrics", nil, nil)
	expectStatus(t, resp, raw, http.StatusForbidden)

	resp, raw = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil, map[string]string{"Authorization": "Bearer scrape"})
	expectStatus(t, resp, raw, http.StatusOK)
	if !bytes.Contains(raw, []byte(`path="/products/{id}"`)) {
		t.Fatalf("route pattern label missing:\n%s", raw)
	}
}
