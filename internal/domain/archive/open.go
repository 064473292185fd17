package archive

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GriffinCanCode/unchive/internal/shared/errs"
	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// Fetcher retrieves remote containers
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Opener turns a Source into an Archive.
type Opener struct {
	fetcher  Fetcher
	maxBytes int64
	logger   *zap.Logger
}

// NewOpener creates an opener. maxBytes bounds the raw container and each
// decoded member; zero disables the limit.
func NewOpener(fetcher Fetcher, maxBytes int64, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{fetcher: fetcher, maxBytes: maxBytes, logger: logger}
}

// Open loads and decodes the container behind src. Unreadable, unsupported
// or empty containers fail with errs.ErrIO.
func (o *Opener) Open(ctx context.Context, src Source) (Archive, error) {
	const op = "open"

	data, err := o.load(ctx, src)
	if err != nil {
		return nil, err
	}
	if o.maxBytes > 0 && int64(len(data)) > o.maxBytes {
		return nil, errs.IO(op, src.Name(), fmt.Errorf("container of %d bytes exceeds limit of %d", len(data), o.maxBytes))
	}

	a, kind, err := o.decode(data, 0)
	if err != nil {
		return nil, errs.IO(op, src.Name(), err)
	}
	if FileCount(a) == 0 {
		a.Close()
		return nil, errs.IO(op, src.Name(), errors.New("container has no entries"))
	}

	o.logger.Debug("Opened container",
		zap.String("source", src.Name()),
		zap.String("format", kind),
		zap.Int("entries", len(a.Entries())))
	return a, nil
}

func (o *Opener) load(ctx context.Context, src Source) ([]byte, error) {
	const op = "load"

	switch s := src.(type) {
	case Bytes:
		return s.Data, nil
	case *Bytes:
		return s.Data, nil
	case URL:
		if o.fetcher == nil {
			return nil, errs.IO(op, string(s), errors.New("remote fetch not configured"))
		}
		data, err := o.fetcher.Get(ctx, string(s))
		if err != nil {
			if errors.Is(err, errs.ErrIO) {
				return nil, err
			}
			return nil, errs.IO(op, string(s), err)
		}
		return data, nil
	case File:
		info, err := os.Stat(string(s))
		if err != nil {
			return nil, errs.IO(op, string(s), err)
		}
		if info.IsDir() {
			return nil, errs.IO(op, string(s), errors.New("is a directory"))
		}
		if o.maxBytes > 0 && info.Size() > o.maxBytes {
			return nil, errs.IO(op, string(s), fmt.Errorf("file of %d bytes exceeds limit of %d", info.Size(), o.maxBytes))
		}
		data, err := os.ReadFile(string(s))
		if err != nil {
			return nil, errs.IO(op, string(s), err)
		}
		return data, nil
	default:
		return nil, errs.IO(op, fmt.Sprintf("%T", src), errors.New("unsupported source"))
	}
}

// decode sniffs the container format. One level of gzip or zstd
// compression around a tar or zip is accepted.
func (o *Opener) decode(data []byte, depth int) (Archive, string, error) {
	mt := mimetype.Detect(data)

	switch {
	case isKind(mt, "application/zip"):
		a, err := newZipArchive(data, o.maxBytes)
		return a, "zip", err
	case isKind(mt, "application/x-tar"):
		a, err := o.readTar(bytes.NewReader(data))
		return a, "tar", err
	case depth == 0 && isKind(mt, "application/gzip"):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", err
		}
		defer gz.Close()
		inner, err := readLimited(gz, o.maxBytes)
		if err != nil {
			return nil, "", err
		}
		a, kind, err := o.decode(inner, depth+1)
		return a, kind + "+gzip", err
	case depth == 0 && isKind(mt, "application/zstd"):
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, "", err
		}
		defer dec.Close()
		inner, err := readLimited(dec, o.maxBytes)
		if err != nil {
			return nil, "", err
		}
		a, kind, err := o.decode(inner, depth+1)
		return a, kind + "+zstd", err
	}
	return nil, "", fmt.Errorf("unsupported container type %s", mt.String())
}

func (o *Opener) readTar(r io.Reader) (*memArchive, error) {
	tr := tar.NewReader(r)
	m := &memArchive{data: make(map[string][]byte)}
	var total int64

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := cleanName(hdr.Name)
		if name == "" {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			m.entries = append(m.entries, Entry{Name: name, Dir: true})
		case tar.TypeReg:
			if _, dup := m.data[name]; dup {
				continue
			}
			data, err := readLimited(tr, o.maxBytes)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			total += int64(len(data))
			if o.maxBytes > 0 && total > o.maxBytes {
				return nil, fmt.Errorf("decoded tar exceeds %d bytes", o.maxBytes)
			}
			m.data[name] = data
			m.entries = append(m.entries, Entry{Name: name, Size: int64(len(data))})
		}
	}
	return m, nil
}

func isKind(mt *mimetype.MIME, kind string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(kind) {
			return true
		}
	}
	return false
}
