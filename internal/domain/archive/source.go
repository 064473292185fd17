package archive

import (
	"net/url"
	"path"
	"path/filepath"
)

// Source identifies where a container comes from: Bytes, URL or File.
type Source interface {
	Name() string
}

// Bytes is an in-memory container
type Bytes struct {
	Filename string
	Data     []byte
}

func (b Bytes) Name() string {
	if b.Filename == "" {
		return "archive"
	}
	return b.Filename
}

// URL is a remote container fetched over HTTP
type URL string

func (u URL) Name() string {
	parsed, err := url.Parse(string(u))
	if err != nil || parsed.Path == "" || parsed.Path == "/" {
		return string(u)
	}
	return path.Base(parsed.Path)
}

// File is a container on the local filesystem
type File string

func (f File) Name() string {
	return filepath.Base(string(f))
}

// Stem returns a source name without its extension
func Stem(src Source) string {
	name := src.Name()
	return name[:len(name)-len(path.Ext(name))]
}
