package crate

import (
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/aigotowork/crate/internal/codec"
	"github.com/aigotowork/crate/internal/compress"
)

// Option is a function that configures a Store.
type Option func(*storeOptions)

// storeOptions holds configuration options for opening a store.
type storeOptions struct {
	logger      Logger
	codec       string
	compression string
	now         func() time.Time
	newID       func() string
	dirPerm     os.FileMode
	filePerm    os.FileMode
}

func defaultOptions() *storeOptions {
	return &storeOptions{
		logger:      NewDefaultLogger(),
		codec:       codec.Default,
		compression: compress.Default,
		now:         time.Now,
		newID:       uuid.NewString,
		dirPerm:     0755,
		filePerm:    0644,
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(logger Logger) Option {
	return func(o *storeOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCodec selects the serialization for new files: "msgpack" (default), "cbor" or "json".
// Files written with another codec stay readable.
func WithCodec(name string) Option {
	return func(o *storeOptions) {
		o.codec = name
	}
}

// WithCompression selects the stream compressor for new files: "gzip" (default), "zstd" or "none".
func WithCompression(name string) Option {
	return func(o *storeOptions) {
		o.compression = name
	}
}

// WithClock replaces time.Now for timestamping saves.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID generator used for new records.
func WithIDGenerator(newID func() string) Option {
	return func(o *storeOptions) {
		if newID != nil {
			o.newID = newID
		}
	}
}

// WithPermissions sets the modes for created directories and record files.
func WithPermissions(dir, file os.FileMode) Option {
	return func(o *storeOptions) {
		o.dirPerm = dir
		o.filePerm = file
	}
}
