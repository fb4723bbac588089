package crate

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/aigotowork/crate/internal/core"
	"github.com/aigotowork/crate/internal/fsutil"
	"github.com/aigotowork/crate/internal/naming"
)

// Operation names used in errors and logs.
const (
	opSave    = "save"
	opOpen    = "open"
	opCopy    = "copy"
	opDelete  = "delete"
	opInspect = "inspect"
	opList    = "list"
	opResolve = "resolve"
)

// lockStripes bounds the number of write locks a store holds.
const lockStripes = 256

// store implements the Store interface.
type store struct {
	root     string
	encoder  *core.Encoder
	decoder  *core.Decoder
	logger   Logger
	now      func() time.Time
	newID    func() string
	dirPerm  os.FileMode
	filePerm os.FileMode

	// Write locks striped by resolved path
	locks [lockStripes]sync.Mutex
}

// lockFor returns the mutex guarding writes to path.
// Distinct paths may share a mutex; one path always maps to the same one.
func (s *store) lockFor(path string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(path))
	return &s.locks[h.Sum32()%lockStripes]
}

// ========== Paths ==========

func (s *store) Root() string {
	return s.root
}

func (s *store) Directory(kind Kind) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", newError(opResolve, "", ErrInvalidArgument, err)
	}
	return filepath.Join(s.root, string(kind)), nil
}

func (s *store) LocationFor(kind Kind, id string) (string, error) {
	dir, err := s.Directory(kind)
	if err != nil {
		return "", err
	}
	if err := naming.Validate(id); err != nil {
		return "", newError(opResolve, "", ErrInvalidArgument, fmt.Errorf("identifier %q: %w", id, err))
	}
	return filepath.Join(dir, naming.FileName(id)), nil
}

func (s *store) Location(rec Record) (string, error) {
	kind, meta, err := recordKind(rec)
	if err != nil {
		return "", newError(opResolve, "", ErrInvalidArgument, err)
	}
	if meta.ID == "" {
		return "", newError(opResolve, "", ErrInvalidArgument, errors.New("record has no identifier yet"))
	}
	return s.LocationFor(kind, meta.ID)
}

// recordKind checks rec and returns its kind and Meta.
func recordKind(rec Record) (Kind, *Meta, error) {
	if isNil(rec) {
		return "", nil, errors.New("record is nil")
	}
	if reflect.TypeOf(rec).Kind() != reflect.Ptr {
		return "", nil, fmt.Errorf("record must be a pointer, got %T", rec)
	}
	meta := rec.Metadata()
	if meta == nil {
		return "", nil, fmt.Errorf("%T returned nil metadata", rec)
	}
	// open decodes into a zero value, which must carry its own Meta
	if reflect.New(reflect.TypeOf(rec).Elem()).Interface().(Record).Metadata() == nil {
		return "", nil, fmt.Errorf("%T must embed crate.Meta by value", rec)
	}
	kind, err := KindOf(rec)
	if err != nil {
		return "", nil, err
	}
	return kind, meta, nil
}

// ========== Save ==========

func (s *store) Save(rec Record) error {
	return s.save(opSave, rec)
}

func (s *store) save(op string, rec Record) error {
	kind, meta, err := recordKind(rec)
	if err != nil {
		return s.fail(newError(op, "", ErrInvalidArgument, err))
	}

	prev := *meta

	if meta.ID == "" {
		meta.ID = s.newID()
	}

	path, err := s.LocationFor(kind, meta.ID)
	if err != nil {
		*meta = prev
		var e *Error
		if errors.As(err, &e) {
			e.Op = op
		}
		return s.fail(err)
	}

	now := s.now().UTC().Round(0)
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	if now.Before(meta.CreatedAt) {
		// Clock went backwards; keep CreatedAt <= UpdatedAt
		now = meta.CreatedAt
	}
	meta.UpdatedAt = now

	if err := s.write(kind, path, rec); err != nil {
		*meta = prev
		return s.fail(newError(op, path, ErrStorage, err))
	}

	s.logger.Debug("record saved",
		Field{"kind", string(kind)},
		Field{"id", meta.ID},
		Field{"path", path},
		Field{"codec", s.encoder.Codec().Name()},
		Field{"compression", s.encoder.Compressor().Name()},
	)

	return nil
}

// write encodes rec and atomically replaces the file at path.
func (s *store) write(kind Kind, path string, rec Record) error {
	meta := rec.Metadata()

	body, err := s.encoder.EncodeBody(rec)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	env := core.NewEnvelope(string(kind), meta.ID, meta.CreatedAt, meta.UpdatedAt, body)

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	return fsutil.AtomicWrite(path, s.dirPerm, s.filePerm, func(w io.Writer) error {
		return s.encoder.Encode(w, env)
	})
}

// ========== Open ==========

func (s *store) Open(id string, target Record) error {
	return s.open(opOpen, id, target)
}

func (s *store) open(op, id string, target Record) error {
	kind, _, err := recordKind(target)
	if err != nil {
		return s.fail(newError(op, "", ErrInvalidArgument, err))
	}

	path, err := s.LocationFor(kind, id)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = op
		}
		return s.fail(err)
	}

	env, hdr, err := s.read(op, kind, path)
	if err != nil {
		return s.fail(err)
	}
	if env.ID != id {
		return s.fail(newError(op, path, ErrCorruptRecord,
			fmt.Errorf("file holds identifier %q", env.ID)))
	}

	// Decode into a fresh value so target is only touched on success
	fresh := reflect.New(reflect.TypeOf(target).Elem())
	if err := s.decoder.DecodeBody(hdr, env.Body, fresh.Interface()); err != nil {
		return s.fail(newError(op, path, ErrCorruptRecord, err))
	}

	meta := fresh.Interface().(Record).Metadata()
	if meta == nil {
		return s.fail(newError(op, path, ErrInvalidArgument,
			fmt.Errorf("%T returned nil metadata after decode", target)))
	}
	meta.ID = env.ID
	meta.CreatedAt = env.Created()
	meta.UpdatedAt = env.Updated()
	meta.PreviousID = ""

	reflect.ValueOf(target).Elem().Set(fresh.Elem())

	s.logger.Debug("record opened",
		Field{"kind", string(kind)},
		Field{"id", id},
		Field{"path", path},
	)

	return nil
}

// read checks the file at path and decodes its envelope.
func (s *store) read(op string, kind Kind, path string) (*core.Envelope, core.Header, error) {
	if _, err := fsutil.StatRegular(path); err != nil {
		return nil, core.Header{}, newError(op, path, classifyRead(err), err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, core.Header{}, newError(op, path, classifyRead(err), err)
	}
	defer f.Close()

	env, hdr, err := s.decoder.Decode(f)
	if err != nil {
		return nil, core.Header{}, newError(op, path, ErrCorruptRecord, err)
	}

	if env.Kind != string(kind) {
		return nil, core.Header{}, newError(op, path, ErrCorruptRecord,
			fmt.Errorf("file holds kind %q, want %q", env.Kind, kind))
	}

	return env, hdr, nil
}

// classifyRead maps a stat or open failure to an error category.
func classifyRead(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return ErrAccessDenied
}

// ========== Copy / Delete / Exists ==========

func (s *store) Copy(id string, target Record) error {
	if err := s.open(opCopy, id, target); err != nil {
		return err
	}

	meta := target.Metadata()
	src := *meta
	*meta = Meta{}

	if err := s.save(opCopy, target); err != nil {
		*meta = src
		return err
	}

	s.logger.Debug("record copied",
		Field{"from", src.ID},
		Field{"to", meta.ID},
	)

	return nil
}

func (s *store) Delete(kind Kind, id string) (bool, error) {
	path, err := s.LocationFor(kind, id)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = opDelete
		}
		return false, s.fail(err)
	}

	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	removed, err := fsutil.RemoveFile(path)
	if err != nil {
		return false, s.fail(newError(opDelete, path, ErrStorage, err))
	}

	if removed {
		s.logger.Debug("record deleted", Field{"kind", string(kind)}, Field{"id", id})
	}

	return removed, nil
}

func (s *store) Exists(kind Kind, id string) bool {
	path, err := s.LocationFor(kind, id)
	if err != nil {
		return false
	}
	return fsutil.FileExists(path)
}

// ========== Inspect ==========

func (s *store) Inspect(kind Kind, id string) (*RawRecord, error) {
	path, err := s.LocationFor(kind, id)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = opInspect
		}
		return nil, s.fail(err)
	}

	env, hdr, err := s.read(opInspect, kind, path)
	if err != nil {
		return nil, s.fail(err)
	}

	var payload interface{}
	if err := s.decoder.DecodeBody(hdr, env.Body, &payload); err != nil {
		return nil, s.fail(newError(opInspect, path, ErrCorruptRecord, err))
	}

	raw := &RawRecord{
		Kind:        kind,
		ID:          env.ID,
		CreatedAt:   env.Created(),
		UpdatedAt:   env.Updated(),
		Codec:       hdr.Codec.Name(),
		Compression: hdr.Compressor.Name(),
		Path:        path,
		Payload:     payload,
	}
	if info, err := os.Stat(path); err == nil {
		raw.Size = info.Size()
	}

	return raw, nil
}

// ========== Enumeration ==========

func (s *store) List(kind Kind) ([]string, error) {
	dir, err := s.Directory(kind)
	if err != nil {
		return nil, err
	}

	files, err := fsutil.ListFiles(dir, naming.Ext)
	if err != nil {
		return nil, s.fail(newError(opList, dir, classifyList(err), err))
	}

	ids := make([]string, 0, len(files))
	for _, name := range files {
		if id, ok := naming.IDFromFileName(name); ok {
			ids = append(ids, id)
		}
	}

	return ids, nil
}

func (s *store) Match(kind Kind, pattern string) ([]string, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, newError(opList, "", ErrInvalidArgument, fmt.Errorf("pattern %q: %w", pattern, err))
	}

	ids, err := s.List(kind)
	if err != nil {
		return nil, err
	}

	matched := ids[:0]
	for _, id := range ids {
		if g.Match(id) {
			matched = append(matched, id)
		}
	}

	return matched, nil
}

func (s *store) Kinds() ([]Kind, error) {
	dirs, err := fsutil.ListDirs(s.root)
	if err != nil {
		return nil, s.fail(newError(opList, s.root, classifyList(err), err))
	}

	kinds := make([]Kind, 0, len(dirs))
	for _, name := range dirs {
		if k := Kind(name); k.Validate() == nil {
			kinds = append(kinds, k)
		}
	}

	return kinds, nil
}

func classifyList(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return ErrAccessDenied
	}
	return ErrStorage
}

// fail logs err and returns it.
func (s *store) fail(err error) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}

	fields := []Field{{"op", e.Op}, {"error", err}}
	if e.Path != "" {
		fields = append(fields, Field{"path", e.Path})
	}

	switch {
	case errors.Is(e.Err, ErrNotFound), errors.Is(e.Err, ErrInvalidArgument):
		s.logger.Debug("operation failed", fields...)
	case errors.Is(e.Err, ErrStorage):
		s.logger.Error("operation failed", fields...)
	default:
		s.logger.Warn("operation failed", fields...)
	}

	return err
}
