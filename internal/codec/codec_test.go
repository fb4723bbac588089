package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string            `codec:"name"`
	Count  int               `codec:"count"`
	Tags   []string          `codec:"tags"`
	Labels map[string]string `codec:"labels"`
	Secret string            `codec:"-"`
}

func TestRoundTripAllCodecs(t *testing.T) {
	in := sample{
		Name:   "bolt",
		Count:  42,
		Tags:   []string{"metal", "small"},
		Labels: map[string]string{"size": "M6"},
		Secret: "skipped",
	}

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := ByName(name)
			require.NoError(t, err)

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, c.Unmarshal(data, &out))

			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Count, out.Count)
			assert.Equal(t, in.Tags, out.Tags)
			assert.Equal(t, in.Labels, out.Labels)
			assert.Empty(t, out.Secret, "fields tagged codec:\"-\" must not be written")
		})
	}
}

func TestStreamEncodeDecode(t *testing.T) {
	c, err := ByName(Default)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, sample{Name: "nut"}))

	var out sample
	require.NoError(t, c.Decode(&buf, &out))
	assert.Equal(t, "nut", out.Name)
}

func TestGenericDecodeYieldsStringMaps(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			data, err := c.Marshal(sample{Name: "bolt", Count: 1})
			require.NoError(t, err)

			var out interface{}
			require.NoError(t, c.Unmarshal(data, &out))

			m, ok := out.(map[string]interface{})
			require.True(t, ok, "got %T", out)
			assert.Equal(t, "bolt", m["name"])
		})
	}
}

func TestTruncatedInputFails(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, _ := ByName(name)
			data, err := c.Marshal(sample{Name: "a reasonably long name", Tags: []string{"x", "y"}})
			require.NoError(t, err)

			var out sample
			assert.Error(t, c.Unmarshal(data[:len(data)/2], &out))
		})
	}
}

func TestLookup(t *testing.T) {
	c, err := ByName(Msgpack)
	require.NoError(t, err)

	byID, err := ByID(c.ID())
	require.NoError(t, err)
	assert.Equal(t, Msgpack, byID.Name())

	_, err = ByName("xml")
	assert.Error(t, err)

	_, err = ByID(0xff)
	assert.Error(t, err)

	assert.Equal(t, []string{Cbor, JSON, Msgpack}, Names())
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[byte]string)
	for _, name := range Names() {
		c, _ := ByName(name)
		prev, dup := seen[c.ID()]
		assert.False(t, dup, "%s and %s share id %d", prev, name, c.ID())
		seen[c.ID()] = name
	}
}
