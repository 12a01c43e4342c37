package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/kv"
)

func setupKV(t *testing.T) *kv.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := kv.Connect("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("kv connect failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCurrentDefaultsToGuest(t *testing.T) {
	b := NewBinding(setupKV(t), "", nil)

	if got := b.Current(context.Background()); got != Guest {
		t.Errorf("expected guest, got %q", got)
	}
	if b.SignedIn(context.Background()) {
		t.Error("unbound identity should not be signed in")
	}
}

func TestCurrentReadsBinding(t *testing.T) {
	store := setupKV(t)
	b := NewBinding(store, "", nil)
	ctx := context.Background()

	if err := store.Set(ctx, "currentUser", "alice"); err != nil {
		t.Fatal(err)
	}
	if got := b.Current(ctx); got != "alice" {
		t.Errorf("expected alice, got %q", got)
	}
	if !b.SignedIn(ctx) {
		t.Error("bound identity should be signed in")
	}
}

func TestExchange(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code") != "abc123" {
			http.Error(w, "bad code", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"profile": {"login": "alice"}, "token": "tok-1"}`))
	}))
	defer remote.Close()

	store := setupKV(t)
	b := NewBinding(store, remote.URL, nil)
	ctx := context.Background()

	login, err := b.Exchange(ctx, "abc123")
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if login != "alice" {
		t.Errorf("expected alice, got %q", login)
	}

	if got, _ := store.Get(ctx, "currentUser"); got != "alice" {
		t.Errorf("currentUser not persisted: %q", got)
	}
	if got, _ := store.Get(ctx, "gh_token"); got != "tok-1" {
		t.Errorf("token not persisted: %q", got)
	}
}

func TestExchangeFailure(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer remote.Close()

	b := NewBinding(setupKV(t), remote.URL, nil)
	if _, err := b.Exchange(context.Background(), "abc"); err == nil {
		t.Fatal("expected exchange error")
	}
}

func TestSignOut(t *testing.T) {
	store := setupKV(t)
	b := NewBinding(store, "", nil)
	ctx := context.Background()

	store.Set(ctx, "currentUser", "alice")
	store.Set(ctx, "gh_token", "tok")

	if err := b.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if got := b.Current(ctx); got != Guest {
		t.Errorf("expected guest after sign out, got %q", got)
	}
}

func setupRouter(t *testing.T, exchangeURL string) (*gin.Engine, *kv.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := setupKV(t)
	b := NewBinding(store, exchangeURL, nil)
	h := NewHandler(b, nil)
	r := gin.New()
	h.RegisterCallback(r)
	h.RegisterRoutes(r.Group("/api/v2"))
	return r, store
}

func TestCallbackRedirects(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"profile": {"login": "bob"}, "token": "t"}`))
	}))
	defer remote.Close()

	r, store := setupRouter(t, remote.URL)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/github/callback?code=xyz", nil))

	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/account/" {
		t.Errorf("expected redirect to /account/, got %q", loc)
	}
	if got, _ := store.Get(context.Background(), "currentUser"); got != "bob" {
		t.Errorf("binding not persisted: %q", got)
	}
}

func TestCallbackMissingCode(t *testing.T) {
	r, _ := setupRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/github/callback", nil))

	if w.Code == http.StatusFound {
		t.Fatal("missing code must not redirect")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("expected plain error page, got %q", ct)
	}
}

func TestCurrentEndpoint(t *testing.T) {
	r, store := setupRouter(t, "")
	store.Set(context.Background(), "currentUser", "alice")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/identity", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"username":"alice"`) || !strings.Contains(body, `"signedIn":true`) {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestCurrentEndpointGuest(t *testing.T) {
	r, _ := setupRouter(t, "")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/identity", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"username":"guest"`) || !strings.Contains(body, `"signedIn":false`) {
		t.Errorf("unexpected body: %s", body)
	}
}
