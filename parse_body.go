// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

// BodyHandler drives the body stage of a Collector.
// ProcessBody is called repeatedly while the Collector is in the body
// stage. It may consume buffered bytes (see Collector.Data(),
// Collector.Consume()) and must call Collector.EndBody() when the body
// is complete. It returns true if it should be called again immediately
// (more progress is possible with the buffered data) or false to wait
// for more input. A non-zero ErrorHdr aborts parsing.
type BodyHandler interface {
	ProcessBody(c *Collector) (bool, ErrorHdr)
}

// EOFHandler is implemented by body handlers that need to know about the
// end of the stream (e.g. to end a body delimited by the connection
// close). Collector.Finalize() calls it if the body stage is active.
type EOFHandler interface {
	BodyEOF(c *Collector)
}

// BodyFunc adapts a function to the BodyHandler interface.
type BodyFunc func(c *Collector) (bool, ErrorHdr)

// ProcessBody implements BodyHandler.
func (f BodyFunc) ProcessBody(c *Collector) (bool, ErrorHdr) {
	return f(c)
}

// BodyCLen is the default body handler: the body length is given by
// the Content-Length header, missing means empty body.
type BodyCLen struct{}

// ProcessBody implements BodyHandler.
func (BodyCLen) ProcessBody(c *Collector) (bool, ErrorHdr) {
	return c.ReduceData(), ErrHdrOK
}

// BodyTillEOF treats everything after the headers as body, until the
// end of the stream (Collector.Finalize()). Content-Length is ignored.
type BodyTillEOF struct{}

// ProcessBody implements BodyHandler.
func (BodyTillEOF) ProcessBody(c *Collector) (bool, ErrorHdr) {
	if n := c.Buffered(); n > 0 {
		c.Consume(n)
	}
	return false, ErrHdrOK
}

// BodyEOF implements EOFHandler.
func (BodyTillEOF) BodyEOF(c *Collector) {
	c.EndBody()
}
