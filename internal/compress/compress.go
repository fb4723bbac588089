// Package compress wraps record streams in a compressor.
package compress

import (
	"fmt"
	"io"
	"sort"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compressor wraps writers and readers in a compression stream.
type Compressor interface {
	Name() string
	ID() byte

	// NewWriter returns a writer whose Close flushes the stream but leaves w open.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Compressor names.
const (
	None = "none"
	Gzip = "gzip"
	Zstd = "zstd"

	Default = Gzip
)

type noneCompressor struct{}

func (noneCompressor) Name() string { return None }
func (noneCompressor) ID() byte     { return 0 }

func (noneCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (noneCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type gzipCompressor struct{ level int }

func (gzipCompressor) Name() string { return Gzip }
func (gzipCompressor) ID() byte     { return 1 }

func (c gzipCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, c.level)
}

func (gzipCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

type zstdCompressor struct{}

func (zstdCompressor) Name() string { return Zstd }
func (zstdCompressor) ID() byte     { return 2 }

func (zstdCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w)
}

func (zstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}

var registry = map[string]Compressor{
	None: noneCompressor{},
	Gzip: gzipCompressor{level: gzip.DefaultCompression},
	Zstd: zstdCompressor{},
}

// ByName returns the compressor registered under name.
func ByName(name string) (Compressor, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown compression %q", name)
	}
	return c, nil
}

// ByID returns the compressor whose header byte is id.
func ByID(id byte) (Compressor, error) {
	for _, c := range registry {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown compression id %d", id)
}

// Names lists the registered compressor names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
