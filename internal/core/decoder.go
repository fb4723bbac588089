package core

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aigotowork/crate/internal/codec"
	"github.com/aigotowork/crate/internal/compress"
)

// Header describes how a record file was written.
type Header struct {
	Codec      codec.Codec
	Compressor compress.Compressor
}

// Decoder reads record files written by any registered codec and compressor.
type Decoder struct{}

// NewDecoder creates a new Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// ReadHeader reads and checks the fixed header.
func (d *Decoder) ReadHeader(r io.Reader) (Header, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, ErrTruncated
		}
		return Header{}, fmt.Errorf("failed to read header: %w", err)
	}

	if !bytes.Equal(buf[:len(Magic)], Magic[:]) {
		return Header{}, ErrBadMagic
	}

	c, err := codec.ByID(buf[len(Magic)])
	if err != nil {
		return Header{}, err
	}
	z, err := compress.ByID(buf[len(Magic)+1])
	if err != nil {
		return Header{}, err
	}

	return Header{Codec: c, Compressor: z}, nil
}

// Decode reads a whole record file from r.
// The stream must hold exactly one valid envelope.
func (d *Decoder) Decode(r io.Reader) (*Envelope, Header, error) {
	br := bufio.NewReader(r)

	h, err := d.ReadHeader(br)
	if err != nil {
		return nil, Header{}, err
	}

	zr, err := h.Compressor.NewReader(br)
	if err != nil {
		return nil, h, fmt.Errorf("failed to open %s stream: %w", h.Compressor.Name(), err)
	}
	defer zr.Close()

	var env Envelope
	if err := h.Codec.Decode(zr, &env); err != nil {
		return nil, h, fmt.Errorf("failed to decode envelope: %w", err)
	}

	// Draining verifies compression checksums and rejects trailing garbage
	n, err := io.Copy(io.Discard, zr)
	if err != nil {
		return nil, h, fmt.Errorf("failed to read record stream: %w", err)
	}
	if n > 0 {
		return nil, h, ErrTrailingData
	}

	if !env.IsValid() {
		return nil, h, ErrInvalidRecord
	}

	return &env, h, nil
}

// DecodeBody deserializes an envelope body into target using the file's codec.
func (d *Decoder) DecodeBody(h Header, body []byte, target interface{}) error {
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidRecord)
	}
	return h.Codec.Unmarshal(body, target)
}
