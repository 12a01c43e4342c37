package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"

	"github.com/fablepress/core/internal/pkg/kv"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := kv.Connect("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("kv connect failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, nil)
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindStory, KindCode, KindCollection, KindSettings} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("bogus").Valid() {
		t.Error("bogus should be invalid")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	in := StoryDraft{Title: "wip", Body: "once upon", Tags: []string{"x"}}
	if err := svc.Save(ctx, KindStory, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	out, err := svc.LoadStory(ctx)
	if err != nil {
		t.Fatalf("LoadStory failed: %v", err)
	}
	if out.Title != "wip" || out.Body != "once upon" || len(out.Tags) != 1 {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.Warnings == nil || out.Images == nil {
		t.Error("empty lists should be normalized, not nil")
	}
}

func TestLoadEmptySlot(t *testing.T) {
	svc := setupService(t)

	d, err := svc.LoadCode(context.Background())
	if err != nil {
		t.Fatalf("LoadCode failed: %v", err)
	}
	if d.Name != "" || len(d.Files) != 0 || d.Files == nil {
		t.Errorf("expected empty normalized draft, got %+v", d)
	}
}

func TestSaveReplacesWholesale(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, KindStory, StoryDraft{Title: "one", Tags: []string{"a", "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx, KindStory, StoryDraft{Title: "two"}); err != nil {
		t.Fatal(err)
	}

	d, err := svc.LoadStory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.Title != "two" || len(d.Tags) != 0 {
		t.Errorf("save did not fully replace the slot: %+v", d)
	}
}

func TestClear(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	if err := svc.Save(ctx, KindSettings, SettingsDraft{DisplayName: "A"}); err != nil {
		t.Fatal(err)
	}
	if err := svc.Clear(ctx, KindSettings); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	d, err := svc.LoadSettings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.DisplayName != "" {
		t.Errorf("slot not cleared: %+v", d)
	}
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(setupService(t)).RegisterRoutes(r.Group("/api/v2"))
	return r
}

func TestHandlerSaveAndGet(t *testing.T) {
	r := setupRouter(t)

	body, _ := json.Marshal(StoryDraft{Title: "draft title"})
	req := httptest.NewRequest(http.MethodPut, "/api/v2/drafts/story", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/drafts/story", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var d StoryDraft
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if d.Title != "draft title" {
		t.Errorf("expected saved draft, got %+v", d)
	}
}

func TestHandlerUnknownKind(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/drafts/bogus", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown kind, got %d", w.Code)
	}
}

func TestHandlerClear(t *testing.T) {
	r := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v2/drafts/code", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestHandlerAttachAssets(t *testing.T) {
	r := setupRouter(t)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "files", "pic.png", "image/png", []byte("pixels"))

	req := httptest.NewRequest(http.MethodPost, "/api/v2/drafts/story/assets", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var d StoryDraft
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if len(d.Images) != 1 || d.Images[0].Filename != "pic.png" {
		t.Errorf("expected attached image, got %+v", d.Images)
	}
}

func TestHandlerAttachAssetsWrongKind(t *testing.T) {
	r := setupRouter(t)

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "files", "x.txt", "text/plain", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/api/v2/drafts/collection/assets", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename, mime string, data []byte) string {
	t.Helper()
	w := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", mime)
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return w.FormDataContentType()
}
