/*
Package crate turns in-memory entities into durable, compressed record files
and back again.

Each record lives in its own file at

	<root>/<kind>/<id>.dat

where kind names the entity's Go type and id is a UUID assigned on first save.

Quick Start:

	type Widget struct {
		crate.Meta
		Name string `codec:"name"`
	}

	store := crate.MustNew("/data/myapp")

	w := &Widget{Name: "bolt"}
	if err := store.Save(w); err != nil {
		log.Fatal(err)
	}

	loaded, err := crate.Load[Widget](store, w.ID)

Features:

- Identifier and timestamp bookkeeping
- Directory-per-kind layout
- Atomic writes (temp file then rename)
- msgpack, cbor or json bodies; gzip, zstd or no compression
- Typed errors carrying the resolved path
*/
package crate

import (
	"fmt"

	"github.com/aigotowork/crate/internal/codec"
	"github.com/aigotowork/crate/internal/compress"
	"github.com/aigotowork/crate/internal/core"
	"github.com/aigotowork/crate/internal/fsutil"
)

// Store saves and opens records under a single storage root.
// All methods are safe for concurrent use.
//
// Example:
//
//	store := crate.MustNew("/data")
//	err := store.Save(widget)
type Store interface {
	// ========== Records ==========

	// Save persists rec, assigning its ID and CreatedAt if unset and
	// refreshing UpdatedAt. On failure rec's Meta is left as it was.
	Save(rec Record) error

	// Open loads the record with the given id into target, which must be a
	// non-nil pointer of the record's type. target is untouched on failure.
	Open(id string, target Record) error

	// Copy loads id into target and saves it again under a new identifier
	// with fresh timestamps. target ends up as the new record.
	Copy(id string, target Record) error

	// Delete removes a record file. It reports false, without an error,
	// when there was nothing to remove.
	Delete(kind Kind, id string) (bool, error)

	// Exists checks if a record file exists.
	Exists(kind Kind, id string) bool

	// Inspect decodes a record file without knowing its Go type.
	Inspect(kind Kind, id string) (*RawRecord, error)

	// ========== Enumeration ==========

	// List returns the identifiers stored for kind, sorted.
	List(kind Kind) ([]string, error)

	// Match returns the identifiers stored for kind that match a glob pattern.
	Match(kind Kind, pattern string) ([]string, error)

	// Kinds returns the kinds that have a directory under the root.
	Kinds() ([]Kind, error)

	// ========== Paths ==========

	// Root returns the absolute storage root.
	Root() string

	// Directory returns <root>/<kind>.
	Directory(kind Kind) (string, error)

	// LocationFor returns <root>/<kind>/<id>.dat.
	LocationFor(kind Kind, id string) (string, error)

	// Location returns the file a saved record lives in.
	Location(rec Record) (string, error)
}

// New creates a store rooted at root. Nothing is written until the first save.
//
// Example:
//
//	store, err := crate.New("/data/myapp", crate.WithCompression("zstd"))
//	if err != nil {
//		log.Fatal(err)
//	}
func New(root string, opts ...Option) (Store, error) {
	if err := ValidateRoot(root); err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	absRoot, err := fsutil.AbsPath(root)
	if err != nil {
		return nil, newError("configure", root, ErrConfiguration, err)
	}

	c, err := codec.ByName(options.codec)
	if err != nil {
		return nil, newError("configure", "", ErrConfiguration, err)
	}
	z, err := compress.ByName(options.compression)
	if err != nil {
		return nil, newError("configure", "", ErrConfiguration, err)
	}

	return &store{
		root:     absRoot,
		encoder:  core.NewEncoder(c, z),
		decoder:  core.NewDecoder(),
		logger:   options.logger,
		now:      options.now,
		newID:    options.newID,
		dirPerm:  options.dirPerm,
		filePerm: options.filePerm,
	}, nil
}

// NewFromConfig creates a store from a Config. Options are applied after
// the config, so WithLogger overrides cfg.LogLevel.
func NewFromConfig(cfg Config, opts ...Option) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{WithCodec(cfg.Codec), WithCompression(cfg.Compression)}
	if cfg.LogLevel != "" {
		logger, err := NewLevelLogger(cfg.LogLevel)
		if err != nil {
			return nil, newError("configure", "", ErrConfiguration, fmt.Errorf("log level: %w", err))
		}
		base = append(base, WithLogger(logger))
	}

	return New(cfg.Root, append(base, opts...)...)
}

// MustNew is like New but panics on error.
// Useful for initialization code where errors are unrecoverable.
func MustNew(root string, opts ...Option) Store {
	s, err := New(root, opts...)
	if err != nil {
		panic(err)
	}
	return s
}
