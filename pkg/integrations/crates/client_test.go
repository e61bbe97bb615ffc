package crates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkgscout/pkgscout/pkg/cache"
	"github.com/pkgscout/pkgscout/pkg/integrations"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := cache.NewMemoryCache(64)
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(store, time.Hour)
	c.baseURL = srv.URL
	return c, srv
}

func TestFetchCrate(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/serde" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"crate": {
				"name": "serde",
				"newest_version": "1.0.193",
				"description": "A serialization framework",
				"license": "MIT OR Apache-2.0",
				"repository": "https://github.com/serde-rs/serde"
			}
		}`)
	}))

	info, err := c.FetchCrate(context.Background(), "serde", false)
	if err != nil {
		t.Fatalf("FetchCrate() failed: %v", err)
	}
	if info.Name != "serde" || info.Version != "1.0.193" {
		t.Errorf("got %+v", info)
	}
	if info.License != "MIT OR Apache-2.0" {
		t.Errorf("got license %q", info.License)
	}
}

func TestFetchCrate_LicenseFallsBackToVersion(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"crate": {"name": "odd", "newest_version": "0.1.0", "license": null},
			"versions": [{"license": "MIT"}]
		}`)
	}))

	info, err := c.FetchCrate(context.Background(), "odd", false)
	if err != nil {
		t.Fatal(err)
	}
	if info.License != "MIT" {
		t.Errorf("got license %q, want MIT", info.License)
	}
}

func TestFetchCrate_NotFoundIsCached(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	}))

	for range 2 {
		_, err := c.FetchCrate(context.Background(), "no-such-crate", false)
		if !errors.Is(err, integrations.ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1 (negative result should be cached)", calls)
	}
}

func TestFetchDependencies(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/serde/1.0.193/dependencies" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"dependencies": [
			{"crate_id": "serde_derive", "req": "=1.0.193", "optional": true, "kind": "normal"},
			{"crate_id": "serde_test", "req": "^1.0", "optional": false, "kind": "dev"}
		]}`)
	}))

	deps, err := c.FetchDependencies(context.Background(), "serde", "1.0.193", false)
	if err != nil {
		t.Fatalf("FetchDependencies() failed: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("got %d deps, want 2", len(deps))
	}
	if deps[0].Name != "serde_derive" || !deps[0].Optional || deps[0].Kind != "normal" {
		t.Errorf("got %+v", deps[0])
	}
	if deps[1].Kind != "dev" {
		t.Errorf("got kind %q, want dev", deps[1].Kind)
	}
}

func TestFetchDependencies_CachedSecondCall(t *testing.T) {
	calls := 0
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"dependencies": []}`)
	}))

	for range 2 {
		if _, err := c.FetchDependencies(context.Background(), "leaf", "1.0.0", false); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 1 {
		t.Errorf("API called %d times, want 1", calls)
	}
}

func TestFetchFeatures(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"version": {"num": "1.0.193", "features": {
			"derive": ["serde_derive"],
			"alloc": []
		}}}`)
	}))

	features, err := c.FetchFeatures(context.Background(), "serde", "1.0.193", false)
	if err != nil {
		t.Fatalf("FetchFeatures() failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("got %d features, want 2", len(features))
	}
	// Sorted by name.
	if features[0].Name != "alloc" || features[1].Name != "derive" {
		t.Errorf("got order %q, %q", features[0].Name, features[1].Name)
	}
}

func TestFetchFeatures_MissingVersion(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.FetchFeatures(context.Background(), "serde", "99.0.0", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}
