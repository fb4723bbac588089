package crate

import "time"

// Field represents a structured logging field.
type Field struct {
	Key   string
	Value interface{}
}

// RawRecord is a record file decoded without its concrete Go type.
type RawRecord struct {
	Kind        Kind        `json:"kind" yaml:"kind"`
	ID          string      `json:"id" yaml:"id"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" yaml:"updated_at"`
	Codec       string      `json:"codec" yaml:"codec"`
	Compression string      `json:"compression" yaml:"compression"`
	Path        string      `json:"path" yaml:"path"`
	Size        int64       `json:"size" yaml:"size"`
	Payload     interface{} `json:"payload" yaml:"payload"`
}
