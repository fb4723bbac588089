package compress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, c Compressor, payload []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := c.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer r.Close()

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("bolt nut washer ", 1000))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)
			assert.Equal(t, payload, roundTrip(t, c, payload))
		})
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			assert.Empty(t, roundTrip(t, c, nil))
		})
	}
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	payload := []byte(strings.Repeat("a", 64*1024))

	for _, name := range []string{Gzip, Zstd} {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			require.NoError(t, err)
			w.Write(payload)
			require.NoError(t, w.Close())

			assert.Less(t, buf.Len(), len(payload)/10)
		})
	}
}

func TestTruncatedStreamFails(t *testing.T) {
	payload := []byte(strings.Repeat("0123456789abcdef", 4096))

	for _, name := range []string{Gzip, Zstd} {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			var buf bytes.Buffer
			w, _ := c.NewWriter(&buf)
			w.Write(payload)
			w.Close()

			truncated := buf.Bytes()[:buf.Len()/2]
			r, err := c.NewReader(bytes.NewReader(truncated))
			if err != nil {
				return
			}
			defer r.Close()

			_, err = io.ReadAll(r)
			assert.Error(t, err)
		})
	}
}

func TestLookup(t *testing.T) {
	c, err := ByName(Default)
	require.NoError(t, err)
	assert.Equal(t, Gzip, c.Name())

	byID, err := ByID(c.ID())
	require.NoError(t, err)
	assert.Equal(t, Gzip, byID.Name())

	_, err = ByName("lz4")
	assert.Error(t, err)
	_, err = ByID(0xee)
	assert.Error(t, err)

	assert.Equal(t, []string{Gzip, None, Zstd}, Names())
}
