package view

import (
	"context"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/fablepress/core/internal/modules/identity"
	"github.com/fablepress/core/internal/modules/snapshot"
	"github.com/fablepress/core/internal/pkg/kv"
)

type memSource struct {
	data []byte
}

func (m memSource) Fetch(ctx context.Context) ([]byte, error) {
	return m.data, nil
}

const fixture = `{
  "stories": [
    {"id": 1, "title": "Dragon Tale", "author": "alice", "body": "once *upon* a time", "tags": ["fantasy"]},
    {"id": 2, "title": "Space Log", "author": "bob", "tags": ["scifi"]},
    {"id": 3, "title": "dragon lore", "author": "alice", "tags": ["Fantasy"]}
  ],
  "codeProjects": [
    {"id": 1, "name": "Clock", "author": "alice", "tags": ["widget"],
     "files": [{"filename": "index.html", "content": "<h1>clock</h1>"}, {"filename": "style.css", "content": "h1{}"}]},
    {"id": 2, "name": "Dragon Game", "author": "bob", "tags": ["fantasy"],
     "files": [{"filename": "notes.txt", "content": "todo"}]}
  ],
  "collections": [
    {"id": 1, "name": "Picks", "author": "alice",
     "items": [{"type": "story", "id": 1}, {"type": "story", "id": 999}, {"type": "code", "id": 1}]}
  ],
  "users": [
    {"username": "alice", "displayName": "Alice the Dragon"},
    {"username": "bob", "displayName": "Bob"}
  ]
}`

func setupView(t *testing.T) (*Service, *kv.Store) {
	t.Helper()
	store := snapshot.New(memSource{data: []byte(fixture)}, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("snapshot load failed: %v", err)
	}

	mr := miniredis.RunT(t)
	kvStore, err := kv.Connect("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("kv connect failed: %v", err)
	}
	t.Cleanup(func() { kvStore.Close() })

	binding := identity.NewBinding(kvStore, "", nil)
	return NewService(store, binding, nil), kvStore
}

func TestResolveKind(t *testing.T) {
	tests := []struct {
		path string
		want PageKind
	}{
		{"/", PageHome},
		{"/story/", PageStory},
		{"/code/", PageCode},
		{"/collection/", PageCollection},
		{"/tag/", PageTag},
		{"/search/", PageSearch},
		{"/account/", PageProfile},
		{"/account/settings/", PageSettings},
		{"/nothing-known/", PageHome},
	}
	for _, tt := range tests {
		if got := ResolveKind(tt.path); got != tt.want {
			t.Errorf("ResolveKind(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestHome(t *testing.T) {
	svc, _ := setupView(t)

	page := svc.Home()
	if len(page.Featured) != 3 {
		t.Errorf("expected 3 featured stories, got %d", len(page.Featured))
	}
	if len(page.Latest) != 2 {
		t.Fatalf("expected 2 latest projects, got %d", len(page.Latest))
	}
	if page.Latest[0].Name != "Clock" || page.Latest[1].Name != "Dragon Game" {
		t.Errorf("latest should keep snapshot order, got %+v", page.Latest)
	}
	if len(page.Tags) == 0 {
		t.Error("expected tag cloud")
	}
}

func TestHomeLatestWindow(t *testing.T) {
	const data = `{"codeProjects": [
	  {"id": 1, "name": "p1"}, {"id": 2, "name": "p2"}, {"id": 3, "name": "p3"},
	  {"id": 4, "name": "p4"}, {"id": 5, "name": "p5"}, {"id": 6, "name": "p6"},
	  {"id": 7, "name": "p7"}]}`
	store := snapshot.New(memSource{data: []byte(data)}, nil)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("snapshot load failed: %v", err)
	}
	svc := NewService(store, nil, nil)

	page := svc.Home()
	want := []string{"p2", "p3", "p4", "p5", "p6", "p7"}
	if len(page.Latest) != len(want) {
		t.Fatalf("expected %d latest projects, got %d", len(want), len(page.Latest))
	}
	for i, name := range want {
		if page.Latest[i].Name != name {
			t.Errorf("latest[%d] = %q, want %q", i, page.Latest[i].Name, name)
		}
	}
}

func TestStoryPage(t *testing.T) {
	svc, _ := setupView(t)

	page, ok := svc.Story(1)
	if !ok {
		t.Fatal("story 1 missing")
	}
	if !strings.Contains(page.BodyHTML, "<em>upon</em>") {
		t.Errorf("body not rendered: %q", page.BodyHTML)
	}

	if _, ok := svc.Story(999); ok {
		t.Error("expected miss for story 999")
	}
}

func TestCodePage(t *testing.T) {
	svc, _ := setupView(t)

	page, ok := svc.Code(1)
	if !ok {
		t.Fatal("code 1 missing")
	}
	if page.Selected != "index.html" {
		t.Errorf("first file should be selected, got %q", page.Selected)
	}
	if page.PreviewPath == "" {
		t.Error("markup project should expose a preview path")
	}

	page, _ = svc.Code(2)
	if page.PreviewPath != "" {
		t.Error("project without markup should have no preview path")
	}
}

func TestCollectionSkipsDanglingRefs(t *testing.T) {
	svc, _ := setupView(t)

	page, ok := svc.Collection(1)
	if !ok {
		t.Fatal("collection 1 missing")
	}
	if len(page.Items) != 2 {
		t.Fatalf("dangling ref should be skipped, got %d items", len(page.Items))
	}
	if page.Items[0].Title != "Dragon Tale" || page.Items[1].Title != "Clock" {
		t.Errorf("unexpected items: %+v", page.Items)
	}
}

func TestTagFilterCaseSensitive(t *testing.T) {
	svc, _ := setupView(t)

	page := svc.Tag("fantasy")
	if len(page.Stories) != 1 || page.Stories[0].ID != 1 {
		t.Errorf("expected only story 1 for tag fantasy, got %+v", page.Stories)
	}
	if len(page.Projects) != 1 || page.Projects[0].ID != 2 {
		t.Errorf("expected only project 2 for tag fantasy, got %+v", page.Projects)
	}

	page = svc.Tag("")
	if len(page.Tags) == 0 {
		t.Error("expected full tag index without a filter")
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	svc, _ := setupView(t)

	page := svc.Search("DRAGON")
	if len(page.Stories) != 2 {
		t.Errorf("expected 2 story hits, got %d", len(page.Stories))
	}
	if len(page.Projects) != 1 {
		t.Errorf("expected 1 project hit, got %d", len(page.Projects))
	}
	if len(page.Users) != 1 || page.Users[0].Username != "alice" {
		t.Errorf("expected alice in user hits, got %+v", page.Users)
	}

	if hits := svc.Search(""); len(hits.Stories)+len(hits.Projects)+len(hits.Users) != 0 {
		t.Error("empty query should match nothing")
	}
}

func TestProfile(t *testing.T) {
	svc, _ := setupView(t)

	page, ok := svc.Profile(context.Background(), "alice")
	if !ok {
		t.Fatal("alice profile missing")
	}
	if len(page.Stories) != 2 || len(page.Projects) != 1 {
		t.Errorf("unexpected authored works: %d stories, %d projects", len(page.Stories), len(page.Projects))
	}

	if _, ok := svc.Profile(context.Background(), "nobody"); ok {
		t.Error("expected miss for unknown user")
	}
}

func TestSettingsFollowsBinding(t *testing.T) {
	svc, kvStore := setupView(t)
	ctx := context.Background()

	// Unbound identity resolves to guest, who is not a user.
	if _, ok := svc.Settings(ctx); ok {
		t.Error("expected miss for guest")
	}

	if err := kvStore.Set(ctx, "currentUser", "alice"); err != nil {
		t.Fatal(err)
	}
	page, ok := svc.Settings(ctx)
	if !ok {
		t.Fatal("expected settings for bound user")
	}
	if page.Username != "alice" {
		t.Errorf("expected alice, got %q", page.Username)
	}
}

func TestRenderersDoNotMutate(t *testing.T) {
	svc, _ := setupView(t)

	before := svc.store.Dump()
	svc.Home()
	svc.Story(1)
	svc.Code(1)
	svc.Collection(1)
	svc.Tag("fantasy")
	svc.Search("dragon")
	after := svc.store.Dump()

	if len(before.Stories) != len(after.Stories) ||
		len(before.CodeProjects) != len(after.CodeProjects) ||
		len(before.Collections) != len(after.Collections) ||
		len(before.Tags) != len(after.Tags) {
		t.Error("renderers mutated the snapshot")
	}
}
