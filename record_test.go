package crate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aigotowork/crate"
)

type badKind struct {
	crate.Meta
}

func (*badKind) Kind() string { return "../etc" }

func TestKindOf(t *testing.T) {
	k, err := crate.KindOf(&Widget{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(k), "github.com_aigotowork_crate_test.Widget_"), "got %q", k)
	assert.NoError(t, k.Validate())

	nilKind, err := crate.KindOf((*Widget)(nil))
	require.NoError(t, err)
	assert.Equal(t, k, nilKind, "typed nil pointers resolve to the same kind")

	assert.Equal(t, k, crate.KindFor[Widget]())
	assert.NotEqual(t, k, crate.KindFor[Gadget]())
}

func TestKindOfKinder(t *testing.T) {
	k, err := crate.KindOf((*Labeled)(nil))
	require.NoError(t, err)
	assert.Equal(t, crate.Kind("labeled"), k)

	_, err = crate.KindOf(&badKind{})
	assert.Error(t, err)
}

func TestKindOfRejects(t *testing.T) {
	_, err := crate.KindOf(nil)
	assert.Error(t, err)

	_, err = crate.KindOf(&struct{ crate.Meta }{})
	assert.Error(t, err, "anonymous types have no kind")
}

func TestKindValidate(t *testing.T) {
	assert.NoError(t, crate.Kind("labeled").Validate())
	assert.Error(t, crate.Kind("").Validate())
	assert.Error(t, crate.Kind("a/b").Validate())
	assert.Error(t, crate.Kind("..").Validate())
}

func TestInvalidKindSurfacesAsInvalidArgument(t *testing.T) {
	s := newStore(t)

	assert.ErrorIs(t, s.Save(&badKind{}), crate.ErrInvalidArgument)

	_, err := s.List(crate.Kind("a/b"))
	assert.ErrorIs(t, err, crate.ErrInvalidArgument)

	assert.False(t, s.Exists(crate.Kind(".."), "x"))
}

func TestMetadataPromotion(t *testing.T) {
	w := &Widget{}
	var rec crate.Record = w
	rec.Metadata().ID = "W1"
	assert.Equal(t, "W1", w.ID)
}
