// Package codec provides the binary serializations records are written with.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"sort"

	"github.com/ugorji/go/codec"
)

// Codec serializes values to and from a byte stream.
// Implementations are safe for concurrent use.
type Codec interface {
	// Name is the configuration name, e.g. "msgpack".
	Name() string

	// ID is the byte stored in record file headers.
	ID() byte

	Encode(w io.Writer, v interface{}) error
	Decode(r io.Reader, v interface{}) error
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// Codec names.
const (
	Msgpack = "msgpack"
	Cbor    = "cbor"
	JSON    = "json"

	Default = Msgpack
)

var mapType = reflect.TypeOf(map[string]interface{}(nil))

type handleCodec struct {
	name   string
	id     byte
	handle codec.Handle
}

func (c *handleCodec) Name() string { return c.name }
func (c *handleCodec) ID() byte     { return c.id }

func (c *handleCodec) Encode(w io.Writer, v interface{}) error {
	if err := codec.NewEncoder(w, c.handle).Encode(v); err != nil {
		return fmt.Errorf("%s encode: %w", c.name, err)
	}
	return nil
}

func (c *handleCodec) Decode(r io.Reader, v interface{}) error {
	if err := codec.NewDecoder(r, c.handle).Decode(v); err != nil {
		return fmt.Errorf("%s decode: %w", c.name, err)
	}
	return nil
}

func (c *handleCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *handleCodec) Unmarshal(data []byte, v interface{}) error {
	if err := codec.NewDecoderBytes(data, c.handle).Decode(v); err != nil {
		return fmt.Errorf("%s decode: %w", c.name, err)
	}
	return nil
}

func newMsgpack() Codec {
	h := &codec.MsgpackHandle{}
	// Distinguish str from bin so generic decoding yields strings
	h.WriteExt = true
	h.MapType = mapType
	return &handleCodec{name: Msgpack, id: 1, handle: h}
}

func newCbor() Codec {
	h := &codec.CborHandle{}
	h.MapType = mapType
	return &handleCodec{name: Cbor, id: 2, handle: h}
}

func newJSON() Codec {
	h := &codec.JsonHandle{}
	h.MapType = mapType
	return &handleCodec{name: JSON, id: 3, handle: h}
}

var registry = func() map[string]Codec {
	m := make(map[string]Codec)
	for _, c := range []Codec{newMsgpack(), newCbor(), newJSON()} {
		m[c.Name()] = c
	}
	return m
}()

// ByName returns the codec registered under name.
func ByName(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", name)
	}
	return c, nil
}

// ByID returns the codec whose header byte is id.
func ByID(id byte) (Codec, error) {
	for _, c := range registry {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown codec id %d", id)
}

// Names lists the registered codec names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
