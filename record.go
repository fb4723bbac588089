package crate

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/aigotowork/crate/internal/naming"
)

// Meta is the bookkeeping every stored entity carries.
// Embed it in an entity struct to make a pointer to that struct a Record:
//
//	type Widget struct {
//		crate.Meta
//		Name string `codec:"name"`
//	}
//
// Meta fields are kept out of the payload body and persisted in the record
// envelope instead.
type Meta struct {
	// ID is assigned on first save when empty and never changes afterwards.
	ID string `codec:"-" json:"id"`

	// CreatedAt is set on first save and never overwritten.
	CreatedAt time.Time `codec:"-" json:"created_at"`

	// UpdatedAt is set on every save.
	UpdatedAt time.Time `codec:"-" json:"updated_at"`

	// PreviousID is process-local and never persisted.
	PreviousID string `codec:"-" json:"-"`
}

// Metadata returns the receiver, so any struct embedding Meta implements Record.
func (m *Meta) Metadata() *Meta {
	return m
}

// Record is anything the store can persist: a pointer to a struct exposing
// its Meta. All other exported fields form the opaque payload.
type Record interface {
	Metadata() *Meta
}

// Kinder lets an entity type choose its kind instead of the derived
// "<import path>.<TypeName>". The returned name is used verbatim as a
// directory and must therefore be a valid file name.
type Kinder interface {
	Kind() string
}

// Kind names the directory records of one entity type live in.
type Kind string

func (k Kind) String() string {
	return string(k)
}

// Validate checks that the kind can be used verbatim as a directory name.
func (k Kind) Validate() error {
	if err := naming.Validate(string(k)); err != nil {
		return fmt.Errorf("kind %q: %w", string(k), err)
	}
	return nil
}

// KindOf returns the kind of an entity value. v may be a typed nil pointer.
func KindOf(v interface{}) (Kind, error) {
	if v == nil {
		return "", errors.New("cannot derive kind of nil")
	}

	t := reflect.TypeOf(v)

	if kinder, ok := v.(Kinder); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			kinder = reflect.New(t.Elem()).Interface().(Kinder)
		}
		k := Kind(kinder.Kind())
		if err := k.Validate(); err != nil {
			return "", err
		}
		return k, nil
	}

	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "", fmt.Errorf("cannot derive kind of unnamed type %s", t)
	}

	name := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		name = pkg + "." + name
	}

	return Kind(naming.EscapeKind(name)), nil
}

// MustKindOf is like KindOf but panics on error.
func MustKindOf(v interface{}) Kind {
	k, err := KindOf(v)
	if err != nil {
		panic(err)
	}
	return k
}

// isNil reports whether v is nil or a nil pointer.
func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
