// Package view resolves a request path to exactly one page kind and runs
// that kind's renderer against the snapshot store.
package view

import "strings"

// PageKind names one of the renderable pages.
type PageKind int

const (
	PageHome PageKind = iota
	PageStory
	PageCode
	PageCollection
	PageTag
	PageSearch
	PageSettings
	PageProfile
)

func (k PageKind) String() string {
	switch k {
	case PageHome:
		return "home"
	case PageStory:
		return "story"
	case PageCode:
		return "code"
	case PageCollection:
		return "collection"
	case PageTag:
		return "tag"
	case PageSearch:
		return "search"
	case PageSettings:
		return "settings"
	case PageProfile:
		return "profile"
	}
	return "unknown"
}

// pagePrefixes is checked in order; settings must resolve before profile
// because the settings path nests under the profile path.
var pagePrefixes = []struct {
	prefix string
	kind   PageKind
}{
	{"/story/", PageStory},
	{"/code/", PageCode},
	{"/collection/", PageCollection},
	{"/tag/", PageTag},
	{"/search/", PageSearch},
	{"/account/settings/", PageSettings},
	{"/account/", PageProfile},
}

// ResolveKind maps a request path to its page kind. The homepage is the
// fallback for anything unmatched.
func ResolveKind(path string) PageKind {
	for _, p := range pagePrefixes {
		if strings.HasPrefix(path, p.prefix) || path == strings.TrimSuffix(p.prefix, "/") {
			return p.kind
		}
	}
	return PageHome
}
