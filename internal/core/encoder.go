package core

import (
	"fmt"
	"io"

	"github.com/aigotowork/crate/internal/codec"
	"github.com/aigotowork/crate/internal/compress"
)

// Encoder writes record files with a fixed codec and compressor.
type Encoder struct {
	codec      codec.Codec
	compressor compress.Compressor
}

// NewEncoder creates a new Encoder.
func NewEncoder(c codec.Codec, z compress.Compressor) *Encoder {
	return &Encoder{codec: c, compressor: z}
}

// Codec returns the codec used for envelopes and bodies.
func (e *Encoder) Codec() codec.Codec {
	return e.codec
}

// Compressor returns the stream compressor.
func (e *Encoder) Compressor() compress.Compressor {
	return e.compressor
}

// EncodeBody serializes a payload value into an envelope body.
func (e *Encoder) EncodeBody(v interface{}) ([]byte, error) {
	return e.codec.Marshal(v)
}

// Encode writes the header and the compressed envelope to w.
// The compression stream is closed before returning, w is not.
func (e *Encoder) Encode(w io.Writer, env *Envelope) error {
	if env == nil {
		return fmt.Errorf("envelope is nil")
	}
	if !env.IsValid() {
		return ErrInvalidRecord
	}

	header := make([]byte, 0, HeaderSize)
	header = append(header, Magic[:]...)
	header = append(header, e.codec.ID(), e.compressor.ID())
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	zw, err := e.compressor.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to open %s stream: %w", e.compressor.Name(), err)
	}

	if err := e.codec.Encode(zw, env); err != nil {
		zw.Close()
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush %s stream: %w", e.compressor.Name(), err)
	}

	return nil
}
