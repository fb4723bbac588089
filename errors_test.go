package crate_test

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aigotowork/crate"
)

func TestErrorMessage(t *testing.T) {
	err := &crate.Error{
		Op:    "open",
		Path:  "/data/main.Widget/W1.dat",
		Err:   crate.ErrNotFound,
		Cause: fs.ErrNotExist,
	}
	assert.Equal(t, "crate: open /data/main.Widget/W1.dat: record not found: file does not exist", err.Error())

	bare := &crate.Error{Op: "save", Err: crate.ErrInvalidArgument}
	assert.Equal(t, "crate: save: invalid argument", bare.Error())
}

func TestErrorUnwrap(t *testing.T) {
	var err error = &crate.Error{Op: "open", Err: crate.ErrAccessDenied, Cause: fs.ErrPermission}

	assert.True(t, errors.Is(err, crate.ErrAccessDenied))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.False(t, errors.Is(err, crate.ErrNotFound))

	var e *crate.Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, "open", e.Op)
}

func TestErrorCategoriesAreDistinct(t *testing.T) {
	all := []error{
		crate.ErrInvalidArgument,
		crate.ErrConfiguration,
		crate.ErrNotFound,
		crate.ErrAccessDenied,
		crate.ErrCorruptRecord,
		crate.ErrStorage,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v is %v", a, b)
			}
		}
	}
}
