// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpguts"
)

// Hooks receives the Collector parsing events.
// All the methods are called synchronously from inside Feed() or
// Finalize().
type Hooks interface {
	// HeaderEnd is called once, when the empty line ending the headers
	// was consumed (before the body stage starts).
	HeaderEnd(c *Collector)
	// BodyBegin is called when entering the body stage.
	BodyBegin(c *Collector)
	// BodyData is called for each consumed piece of the body. b points
	// inside the Collector buffer and is valid only during the call.
	BodyData(c *Collector, b []byte)
	// BodyEnd is called once the body was fully consumed. At this point
	// the Collector per-message state was already reset; m holds the
	// completed message.
	BodyEnd(c *Collector, m *Msg)
	// ProcessEnd is called by Finalize().
	ProcessEnd(c *Collector)
}

// NopHooks implements Hooks doing nothing. Embed it to override only
// some of the events.
type NopHooks struct{}

func (NopHooks) HeaderEnd(*Collector)        {}
func (NopHooks) BodyBegin(*Collector)        {}
func (NopHooks) BodyData(*Collector, []byte) {}
func (NopHooks) BodyEnd(*Collector, *Msg)    {}
func (NopHooks) ProcessEnd(*Collector)       {}

// parsing stages
type flowState uint8

const (
	flFLine    flowState = iota // waiting for the start line
	flHeaders                   // waiting for a header line or the empty line
	flBodyInit                  // headers done, body stage not yet started
	flBody                      // inside the body
)

var flowStateStr = [...]string{
	flFLine:    "start-line",
	flHeaders:  "headers",
	flBodyInit: "body-init",
	flBody:     "body",
}

func (s flowState) String() string {
	if int(s) >= len(flowStateStr) {
		return "invalid"
	}
	return flowStateStr[s]
}

// Collector is an incremental HTTP/1.x message parser.
// Bytes are added with Feed() in pieces of any size and the parser
// advances as far as possible with the buffered data. The buffer holds
// only the bytes not yet consumed: after a message is complete, the
// bytes of the next one (pipelining) stay buffered and are parsed
// right away.
//
// A Collector is not safe for concurrent use.
type Collector struct {
	buf       streamBuf
	fl        []string // start line tokens
	hl        HdrLst
	clen      uint64 // remaining expected body length
	declLen   uint64 // Content-Length value, as parsed
	state     flowState
	hdrReady  bool
	finalized bool
	err       ErrorHdr // sticky parse error

	cfg   Config
	hooks Hooks
	body  BodyHandler
	log   zerolog.Logger
}

// NewCollector returns a new initialized Collector.
// See Init() for the parameters.
func NewCollector(cfg *Config, h Hooks, b BodyHandler) *Collector {
	c := &Collector{}
	c.Init(cfg, h, b)
	return c
}

// Init initializes the Collector. A nil cfg means DefaultConfig(), a nil
// h means NopHooks and a nil b means BodyCLen.
func (c *Collector) Init(cfg *Config, h Hooks, b BodyHandler) {
	if cfg != nil {
		c.cfg = *cfg
	} else {
		c.cfg = DefaultConfig()
	}
	if h == nil {
		h = NopHooks{}
	}
	if b == nil {
		b = BodyCLen{}
	}
	c.hooks = h
	c.body = b
	c.log = c.cfg.Log
	c.Reset()
}

// Feed appends b to the internal buffer and parses as much as possible.
// It returns nil if everything buffered was parsed or more data is
// needed and a ErrorHdr if the input is malformed. After an error, the
// Collector refuses any further input (returning the same error) until
// Reset().
// Feeding a message in one piece or split in any number of pieces gives
// the same results.
func (c *Collector) Feed(b []byte) error {
	if c.err != ErrHdrOK {
		return c.err
	}
	c.buf.Append(b)
	for {
		more, err := c.step()
		if err != ErrHdrOK {
			return c.fail(err)
		}
		if !more {
			break
		}
	}
	return nil
}

// Finalize signals the end of the stream. Buffered data is kept.
// If the body stage is active and the body handler implements
// EOFHandler, it is notified first, then Hooks.ProcessEnd() is called.
func (c *Collector) Finalize() {
	if c.err == ErrHdrOK && c.state == flBody {
		if eh, ok := c.body.(EOFHandler); ok {
			eh.BodyEOF(c)
		}
	}
	c.finalized = true
	c.hooks.ProcessEnd(c)
}

// Finalized returns true if Finalize() was called for the current message.
func (c *Collector) Finalized() bool {
	return c.finalized
}

// HeaderReady returns true if all the headers of the current message
// were parsed.
func (c *Collector) HeaderReady() bool {
	return c.hdrReady
}

// Info returns the start line tokens of the current message.
func (c *Collector) Info() []string {
	return c.fl
}

// Headers returns the headers of the current message.
func (c *Collector) Headers() *HdrLst {
	return &c.hl
}

// ExpectedLength returns the body bytes still expected for the current
// message (initially the Content-Length value).
func (c *Collector) ExpectedLength() uint64 {
	return c.clen
}

// FieldExists returns true if the current message has a header with the
// given name (case-insensitive).
func (c *Collector) FieldExists(name string) bool {
	return c.hl.Has(name)
}

// Data returns the buffered bytes not yet consumed. The slice is valid
// until the next Feed().
func (c *Collector) Data() []byte {
	return c.buf.Bytes()
}

// Buffered returns the number of bytes not yet consumed.
func (c *Collector) Buffered() int {
	return c.buf.Len()
}

// Err returns the parse error that stopped the Collector or nil.
func (c *Collector) Err() error {
	if c.err == ErrHdrOK {
		return nil
	}
	return c.err
}

// Consume drops the first n buffered bytes. Inside the body stage the
// dropped bytes are passed to Hooks.BodyData(). It is meant to be used
// by body handlers.
func (c *Collector) Consume(n int) {
	if n <= 0 {
		return
	}
	if n > c.buf.Len() {
		n = c.buf.Len()
	}
	if c.state == flBody {
		c.hooks.BodyData(c, c.buf.Bytes()[:n])
	}
	c.buf.Consume(n)
}

// ReduceData is the Content-Length body step: it consumes up to
// ExpectedLength() bytes and ends the body when all of them were seen.
// It returns true if there is still buffered data after the body end.
func (c *Collector) ReduceData() bool {
	if n := c.buf.Len(); uint64(n) < c.clen {
		c.clen -= uint64(n)
		c.Consume(n)
		return false
	}
	c.Consume(int(c.clen))
	c.clen = 0
	c.EndBody()
	return c.buf.Len() > 0
}

// EndBody completes the current message: the per-message state is reset
// (ResetState()) and then Hooks.BodyEnd() is called with the completed
// message. It does nothing outside the body stage.
func (c *Collector) EndBody() {
	if c.state != flBody {
		return
	}
	m := Msg{FL: c.fl, HL: c.hl, CLen: c.declLen}
	c.log.Debug().Strs("start_line", m.FL).Int("headers", m.HL.Len()).
		Uint64("content_length", m.CLen).Int("buffered", c.buf.Len()).
		Msg("message complete")
	c.ResetState()
	c.hooks.BodyEnd(c, &m)
}

// ResetState clears the current message state and prepares for parsing
// a new message. The buffered data is kept.
func (c *Collector) ResetState() {
	c.fl = nil
	c.hl = HdrLst{} // not reused: a completed Msg might still point to it
	c.clen = 0
	c.declLen = 0
	c.state = flFLine
	c.hdrReady = false
	c.finalized = false
}

// ResetData drops all the buffered data.
func (c *Collector) ResetData() {
	c.buf.Reset()
}

// Reset resets everything, including a previous parse error.
func (c *Collector) Reset() {
	c.ResetState()
	c.ResetData()
	c.err = ErrHdrOK
}

func (c *Collector) fail(e ErrorHdr) error {
	c.err = e
	c.log.Warn().Str("err", e.Error()).Stringer("stage", c.state).
		Int("buffered", c.buf.Len()).Msg("message parsing failed")
	return e
}

// step runs the current stage once. It returns true if progress was made
// and it should be called again.
func (c *Collector) step() (bool, ErrorHdr) {
	switch c.state {
	case flFLine:
		return c.parseFLine()
	case flHeaders:
		return c.parseHdrLine()
	case flBodyInit:
		c.state = flBody
		c.hooks.BodyBegin(c)
		return true, ErrHdrOK
	case flBody:
		return c.body.ProcessBody(c)
	}
	return false, ErrHdrBug
}

// lineEnd returns the offset of the LF ending the line at the start of
// the buffer. ok is false if the line is not complete yet. A line
// longer than MaxLineLen (LF excluded) is an error whether it is
// complete or not, so the result does not depend on how the input was
// split.
func (c *Collector) lineEnd(buf []byte) (eol int, ok bool, err ErrorHdr) {
	eol = SkipToEOL(buf, 0)
	if limit := c.cfg.MaxLineLen; limit > 0 && eol > limit {
		return eol, false, ErrHdrLineTooLong
	}
	return eol, eol < len(buf), ErrHdrOK
}

// parseFLine parses the start line: space separated tokens up to LF.
// Nothing is parsed before the LF is seen, so a token is never split
// between two Feed() calls.
func (c *Collector) parseFLine() (bool, ErrorHdr) {
	buf := c.buf.Bytes()
	eol, ok, e := c.lineEnd(buf)
	if !ok {
		return false, e // ErrHdrOK: more bytes needed
	}
	line := buf[:eol]
	toks := []string{} // empty start line allowed
	i := SkipSpaces(line, 0)
	for i < len(line) {
		n := SkipToken(line, i)
		toks = append(toks, string(line[i:n]))
		i = SkipSpaces(line, n)
	}
	c.fl = toks
	c.buf.Consume(eol + 1)
	c.state = flHeaders
	c.log.Trace().Strs("start_line", toks).Msg("start line parsed")
	return true, ErrHdrOK
}

// parseHdrLine parses one header line (Name SP* : SP* val SP* LF) or the
// empty line ending the headers.
func (c *Collector) parseHdrLine() (bool, ErrorHdr) {
	buf := c.buf.Bytes()
	eol, ok, e := c.lineEnd(buf)
	if !ok {
		return false, e // ErrHdrOK: more bytes needed
	}
	line := buf[:eol]
	i := SkipSpaces(line, 0)
	if i >= len(line) {
		c.buf.Consume(eol + 1)
		c.state = flBodyInit
		c.hdrReady = true
		c.log.Trace().Int("headers", c.hl.Len()).
			Uint64("content_length", c.clen).Msg("headers parsed")
		c.hooks.HeaderEnd(c)
		return true, ErrHdrOK
	}
	n := SkipTokenStrict(line, i)
	if n == i {
		return false, ErrHdrNoName
	}
	name := line[i:n]
	col := SkipSpaces(line, n)
	if col >= len(line) || line[col] != ':' {
		return false, ErrHdrNoColon
	}
	vs := SkipSpaces(line, col+1)
	ve := len(line)
	for ve > vs && IsSpace(line[ve-1]) {
		ve--
	}
	if c.cfg.StrictNames && !httpguts.ValidHeaderFieldName(string(name)) {
		return false, ErrHdrBadName
	}
	h := HdrField{
		Name: lowerName(name),
		Val:  string(line[vs:ve]),
		Type: GetHdrType(name),
	}
	if h.Type == HdrCLen {
		if v, err := strconv.ParseUint(h.Val, 10, 64); err == nil {
			c.clen = v
			c.declLen = v
		} else if c.cfg.StrictCLen {
			return false, ErrHdrBadCLen
		} else {
			c.log.Debug().Str("value", h.Val).Uint64("kept", c.clen).
				Msg("ignoring invalid Content-Length")
		}
	}
	c.hl.add(h)
	c.buf.Consume(eol + 1)
	return true, ErrHdrOK
}
