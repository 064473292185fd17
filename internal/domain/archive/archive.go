package archive

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// Entry describes one member of a container
type Entry struct {
	Name string
	Size int64
	Dir  bool
}

// Archive lists and reads the members of an opened container.
type Archive interface {
	Entries() []Entry
	ReadFile(name string) ([]byte, error)
	Close() error
}

// zipArchive reads members lazily from an in-memory zip
type zipArchive struct {
	reader  *zip.Reader
	files   map[string]*zip.File
	entries []Entry
	limit   int64
}

func newZipArchive(data []byte, limit int64) (*zipArchive, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	z := &zipArchive{
		reader: reader,
		files:  make(map[string]*zip.File, len(reader.File)),
		limit:  limit,
	}
	for _, f := range reader.File {
		name := cleanName(f.Name)
		if name == "" {
			continue
		}
		if _, dup := z.files[name]; dup {
			continue
		}
		z.files[name] = f
		z.entries = append(z.entries, Entry{
			Name: name,
			Size: int64(f.UncompressedSize64),
			Dir:  f.FileInfo().IsDir(),
		})
	}
	return z, nil
}

func (z *zipArchive) Entries() []Entry {
	return append([]Entry(nil), z.entries...)
}

func (z *zipArchive) ReadFile(name string) ([]byte, error) {
	f, ok := z.files[name]
	if !ok {
		return nil, fmt.Errorf("entry %q not found", name)
	}
	if f.FileInfo().IsDir() {
		return nil, fmt.Errorf("entry %q is a directory", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return readLimited(rc, z.limit)
}

func (z *zipArchive) Close() error {
	return nil
}

// memArchive holds fully decoded members, used for tar containers
type memArchive struct {
	entries []Entry
	data    map[string][]byte
}

func (m *memArchive) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

func (m *memArchive) ReadFile(name string) ([]byte, error) {
	data, ok := m.data[name]
	if !ok {
		return nil, fmt.Errorf("entry %q not found", name)
	}
	return data, nil
}

func (m *memArchive) Close() error {
	m.data = nil
	return nil
}

// FileCount returns the number of non-directory entries
func FileCount(a Archive) int {
	n := 0
	for _, e := range a.Entries() {
		if !e.Dir {
			n++
		}
	}
	return n
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadText reads an entry and decodes it to UTF-8 text.
func ReadText(a Archive, name string) (string, error) {
	data, err := a.ReadFile(name)
	if err != nil {
		return "", err
	}
	return DecodeText(data), nil
}

// DecodeText strips a UTF-8 BOM and transcodes non-UTF-8 input using the
// detected charset. Undecodable bytes become U+FFFD.
func DecodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	if res, err := chardet.NewTextDetector().DetectBest(data); err == nil {
		if enc, err := htmlindex.Get(res.Charset); err == nil {
			if out, err := enc.NewDecoder().Bytes(data); err == nil && utf8.Valid(out) {
				return string(out)
			}
		}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("entry exceeds %d bytes", limit)
	}
	return data, nil
}

// cleanName normalizes member paths to slash form without a leading "./" or "/".
func cleanName(name string) string {
	dir := strings.HasSuffix(name, "/")
	name = strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" || name == "." {
		return ""
	}
	if dir {
		return name + "/"
	}
	return name
}
