// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package layer

import (
	"errors"
	"io"
)

// Layer is what a node sees of its neighbours.
type Layer[M any] interface {
	FromUpper(msg M) // message coming from the layer above
	FromLower(msg M) // message coming from the layer below
	io.Closer
}

// Port is the node view passed to a Handler: it sends messages on and
// tells which neighbours exist.
type Port[M any] interface {
	SendUpper(msg M)
	SendLower(msg M)
	HasUpper() bool
	HasLower() bool
}

// Handler replaces the default forwarding of a Node. It can transform,
// consume or multiply messages, sending the results through p.
// If a Handler also implements io.Closer, it is closed with the Node.
type Handler[M any] interface {
	FromUpper(p Port[M], msg M)
	FromLower(p Port[M], msg M)
}

// HandlerFuncs adapts a pair of functions to the Handler interface. A nil
// function forwards the message unchanged.
type HandlerFuncs[M any] struct {
	Upper func(p Port[M], msg M) // called for messages from above
	Lower func(p Port[M], msg M) // called for messages from below
}

func (h HandlerFuncs[M]) FromUpper(p Port[M], msg M) {
	if h.Upper == nil {
		p.SendLower(msg)
		return
	}
	h.Upper(p, msg)
}

func (h HandlerFuncs[M]) FromLower(p Port[M], msg M) {
	if h.Lower == nil {
		p.SendUpper(msg)
		return
	}
	h.Lower(p, msg)
}

// Node is a chain participant with at most one upper and one lower
// neighbour. U and L are the ownership policies for the upper and lower
// neighbour references.
//
// A Node is not safe for concurrent use.
type Node[M any, U, L Policy] struct {
	h      Handler[M]
	upper  slot[M, U]
	lower  slot[M, L]
	closed bool
}

// New returns a Node using h for the incoming messages. A nil h forwards
// everything: messages from above go down and messages from below go up.
func New[M any, U, L Policy](h Handler[M]) *Node[M, U, L] {
	return &Node[M, U, L]{h: h}
}

// FromUpper handles a message coming from the upper neighbour.
func (n *Node[M, U, L]) FromUpper(msg M) {
	if n.h == nil {
		n.SendLower(msg)
		return
	}
	n.h.FromUpper(n, msg)
}

// FromLower handles a message coming from the lower neighbour.
func (n *Node[M, U, L]) FromLower(msg M) {
	if n.h == nil {
		n.SendUpper(msg)
		return
	}
	n.h.FromLower(n, msg)
}

// SendUpper passes msg to the upper neighbour. It panics with ErrNoUpper
// if there is none (check HasUpper()).
func (n *Node[M, U, L]) SendUpper(msg M) {
	n.upper.get(ErrNoUpper).FromLower(msg)
}

// SendLower passes msg to the lower neighbour. It panics with ErrNoLower
// if there is none (check HasLower()).
func (n *Node[M, U, L]) SendLower(msg M) {
	n.lower.get(ErrNoLower).FromUpper(msg)
}

// HasUpper returns true if an upper neighbour is set.
func (n *Node[M, U, L]) HasUpper() bool {
	return n.upper.present()
}

// HasLower returns true if a lower neighbour is set.
func (n *Node[M, U, L]) HasLower() bool {
	return n.lower.present()
}

// Upper returns the upper neighbour or nil.
func (n *Node[M, U, L]) Upper() Layer[M] {
	return n.upper.n
}

// Lower returns the lower neighbour or nil.
func (n *Node[M, U, L]) Lower() Layer[M] {
	return n.lower.n
}

// SetUpper sets the upper neighbour (nil, typed or not, clears it) and
// returns the previous one. The returned neighbour is not closed, even
// with an Exclusive policy: it is handed back to the caller.
func (n *Node[M, U, L]) SetUpper(up Layer[M]) Layer[M] {
	return n.upper.swap(up)
}

// SetLower is SetUpper for the lower neighbour.
func (n *Node[M, U, L]) SetLower(low Layer[M]) Layer[M] {
	return n.lower.swap(low)
}

// Close tears the node down: the handler is closed if it is an
// io.Closer, then both neighbour references are released according to
// their policies. Only the first call has any effect.
func (n *Node[M, U, L]) Close() error {
	if n.closed {
		return nil
	}
	n.closed = true
	var errs []error
	if c, ok := n.h.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	errs = append(errs, n.upper.release(), n.lower.release())
	return errors.Join(errs...)
}

// Linker is implemented by nodes that can be wired together.
type Linker[M any] interface {
	Layer[M]
	SetUpper(up Layer[M]) Layer[M]
	SetLower(low Layer[M]) Layer[M]
}

// Link makes lower the lower neighbour of upper and upper the upper
// neighbour of lower. It returns the neighbours they held before, which
// are not closed.
func Link[M any](upper, lower Linker[M]) (prevLower, prevUpper Layer[M]) {
	prevLower = upper.SetLower(lower)
	prevUpper = lower.SetUpper(upper)
	return prevLower, prevUpper
}
