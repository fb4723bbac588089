package crate

// Load opens the record with the given id as a new *T.
//
// Example:
//
//	w, err := crate.Load[Widget](store, id)
func Load[T any, P interface {
	*T
	Record
}](s Store, id string) (P, error) {
	p := P(new(T))
	if err := s.Open(id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Duplicate copies the record with the given id under a new identifier and returns the copy.
func Duplicate[T any, P interface {
	*T
	Record
}](s Store, id string) (P, error) {
	p := P(new(T))
	if err := s.Copy(id, p); err != nil {
		return nil, err
	}
	return p, nil
}

// KindFor returns the kind of *T.
//
// Example:
//
//	ids, err := store.List(crate.KindFor[Widget]())
func KindFor[T any, P interface {
	*T
	Record
}]() Kind {
	return MustKindOf(P(nil))
}
