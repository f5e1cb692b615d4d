// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package layer

import (
	"errors"
	"io"
	"reflect"
)

// Policy decides what happens to a neighbour reference when the node
// holding it is closed. It is chosen per direction, as a Node type
// parameter.
type Policy interface {
	// Owns returns true if the holder is responsible for the neighbour
	// lifetime. Release is called only for owning policies.
	Owns() bool
	// Release ends the held neighbour lifetime on teardown.
	Release(n io.Closer) error
}

// Exclusive owns the neighbour: closing the holder closes it too, so a
// chain of Exclusive references is torn down in one go.
type Exclusive struct{}

func (Exclusive) Owns() bool { return true }

func (Exclusive) Release(n io.Closer) error { return n.Close() }

// Borrowed only references the neighbour, whose lifetime is managed
// elsewhere.
type Borrowed struct{}

func (Borrowed) Owns() bool { return false }

func (Borrowed) Release(io.Closer) error { return nil }

// Errors used as panic values when sending to a missing neighbour.
var (
	ErrNoUpper = errors.New("layer: no upper neighbour")
	ErrNoLower = errors.New("layer: no lower neighbour")
)

// slot holds one neighbour reference, managed by the policy P.
type slot[M any, P Policy] struct {
	n Layer[M]
}

func (s *slot[M, P]) present() bool {
	return s.n != nil
}

// get returns the neighbour; missing means a caller bug.
func (s *slot[M, P]) get(missing error) Layer[M] {
	if s.n == nil {
		panic(missing)
	}
	return s.n
}

// swap stores n and returns the previous neighbour, never releasing it.
// A typed nil (e.g. a nil *Node) is stored as no neighbour.
func (s *slot[M, P]) swap(n Layer[M]) Layer[M] {
	old := s.n
	if isNil(n) {
		n = nil
	}
	s.n = n
	return old
}

func isNil(n any) bool {
	if n == nil {
		return true
	}
	switch v := reflect.ValueOf(n); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan,
		reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// release drops the reference and, if P owns the neighbour, releases it.
func (s *slot[M, P]) release() error {
	n := s.n
	s.n = nil
	var p P
	if n == nil || !p.Owns() {
		return nil
	}
	return p.Release(n)
}
