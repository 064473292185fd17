package catalog

import (
	"context"
	"os"
)

// Fetcher returns the raw catalog JSON
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// Getter is satisfied by httpclient.Client
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FileFetcher reads the catalog from a local path
type FileFetcher string

func (f FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(string(f))
}

func (f FileFetcher) String() string {
	return string(f)
}

// HTTPFetcher downloads the catalog
type HTTPFetcher struct {
	Client Getter
	URL    string
}

func (h HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	return h.Client.Get(ctx, h.URL)
}

func (h HTTPFetcher) String() string {
	return h.URL
}

// StaticFetcher serves an in-memory catalog
type StaticFetcher []byte

func (s StaticFetcher) Fetch(context.Context) ([]byte, error) {
	return s, nil
}

func (s StaticFetcher) String() string {
	return "static"
}
