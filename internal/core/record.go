// Package core implements the on-disk record file format.
//
// A record file is a fixed header followed by a compressed stream:
//
//	"CRAT" | codec id (1 byte) | compression id (1 byte) | compressed(envelope)
//
// The envelope carries the record's kind, identifier and timestamps next to
// the codec-encoded payload body. Codec and compression are read back from
// the header, so files remain readable whatever the store is configured with.
package core

import (
	"errors"
	"time"
)

// Magic opens every record file.
var Magic = [4]byte{'C', 'R', 'A', 'T'}

// HeaderSize is the length of the fixed file header.
const HeaderSize = len(Magic) + 2

var (
	ErrBadMagic      = errors.New("not a record file")
	ErrTruncated     = errors.New("record file truncated")
	ErrTrailingData  = errors.New("unexpected data after record")
	ErrInvalidRecord = errors.New("invalid record envelope")
)

// Timestamp is an instant stored as Unix seconds plus nanoseconds, which
// covers the whole range of time.Time.
type Timestamp struct {
	Sec  int64 `codec:"sec"`
	Nsec int32 `codec:"nsec"`
}

// TimestampOf converts t to a Timestamp.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Sec: t.Unix(), Nsec: int32(t.Nanosecond())}
}

// Time returns the instant in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec)).UTC()
}

// Before reports whether ts is earlier than other.
func (ts Timestamp) Before(other Timestamp) bool {
	if ts.Sec != other.Sec {
		return ts.Sec < other.Sec
	}
	return ts.Nsec < other.Nsec
}

// Envelope is the persisted form of a record.
type Envelope struct {
	Kind      string    `codec:"kind"`
	ID        string    `codec:"id"`
	CreatedAt Timestamp `codec:"created_at"`
	UpdatedAt Timestamp `codec:"updated_at"`
	Body      []byte    `codec:"body"`
}

// NewEnvelope creates an envelope.
func NewEnvelope(kind, id string, createdAt, updatedAt time.Time, body []byte) *Envelope {
	return &Envelope{
		Kind:      kind,
		ID:        id,
		CreatedAt: TimestampOf(createdAt),
		UpdatedAt: TimestampOf(updatedAt),
		Body:      body,
	}
}

// Created returns the creation time in UTC.
func (e *Envelope) Created() time.Time {
	return e.CreatedAt.Time()
}

// Updated returns the last update time in UTC.
func (e *Envelope) Updated() time.Time {
	return e.UpdatedAt.Time()
}

// IsValid checks if the envelope is complete and consistent.
func (e *Envelope) IsValid() bool {
	if e.Kind == "" || e.ID == "" {
		return false
	}
	if e.CreatedAt.Nsec < 0 || e.CreatedAt.Nsec >= 1e9 || e.UpdatedAt.Nsec < 0 || e.UpdatedAt.Nsec >= 1e9 {
		return false
	}
	return !e.UpdatedAt.Before(e.CreatedAt)
}
