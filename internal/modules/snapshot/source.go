package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Source retrieves the raw snapshot resource exactly once per process.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// FileSource reads the snapshot from a local path.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("snapshot read: %w", err)
	}
	return data, nil
}

// HTTPSource retrieves the snapshot over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (h HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot fetch: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch: %w", err)
	}
	return body, nil
}

// SourceFor picks an HTTP or file source based on the resource locator.
func SourceFor(resource string) Source {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return HTTPSource{URL: resource}
	}
	return FileSource{Path: resource}
}
