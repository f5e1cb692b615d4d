// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"fmt"
	"net/http"
	"strconv"
)

// HTTPVersion is the protocol version used by NewRequest and NewResponse.
const HTTPVersion = "HTTP/1.1"

// MsgBuilder serializes a message in the format accepted by Collector:
// space separated start line tokens, "Name: value" header lines and an
// empty line, each terminated by CRLF (or LF if LF is set), followed by
// the body.
type MsgBuilder struct {
	FL   []string   // start line tokens
	Hdrs []HdrField // headers, rendered in order (Type is ignored)
	Body []byte     // use SetBody() to keep Content-Length in sync
	LF   bool       // use bare LF line ends instead of CRLF
}

// NewRequest returns a builder for a "method path HTTP/1.1" request.
func NewRequest(method, path string) *MsgBuilder {
	return &MsgBuilder{FL: []string{method, path, HTTPVersion}}
}

// NewResponse returns a builder for a "HTTP/1.1 code reason" reply.
// Unknown codes get no reason phrase.
func NewResponse(code int) *MsgBuilder {
	fl := []string{HTTPVersion, strconv.Itoa(code)}
	if r := http.StatusText(code); r != "" {
		fl = append(fl, r)
	}
	return &MsgBuilder{FL: fl}
}

// FromMsg returns a builder that reproduces a parsed message.
// The Content-Length header is made to match the body: it is replaced
// if missing (non-empty body), duplicated or different from the body
// length. A message parsed with BodyTillEOF thus gets its framing back.
func FromMsg(m *Msg) *MsgBuilder {
	b := &MsgBuilder{
		FL:   append([]string(nil), m.FL...),
		Body: m.Body,
	}
	if len(m.HL.Hdrs) > 0 {
		b.Hdrs = append([]HdrField(nil), m.HL.Hdrs...)
	}
	cl := strconv.Itoa(len(m.Body))
	switch vals := m.HL.Values("content-length"); {
	case len(vals) == 0 && len(m.Body) == 0:
	case len(vals) == 1 && vals[0] == cl:
	default:
		b.Set("Content-Length", cl)
	}
	return b
}

// Add appends a header. val can be a string, a []byte, an integer, a
// bool, a fmt.Stringer or anything fmt.Sprint can handle.
// Duplicates are kept. Neither name nor val are checked here, see
// Validate().
func (b *MsgBuilder) Add(name string, val interface{}) *MsgBuilder {
	b.Hdrs = append(b.Hdrs, HdrField{Name: name, Val: valStr(val)})
	return b
}

// Set replaces all the headers named name (case-insensitive) with a
// single one, added in the position of the first match (or at the end).
func (b *MsgBuilder) Set(name string, val interface{}) *MsgBuilder {
	n := lowerStr(name)
	pos := -1
	hdrs := b.Hdrs[:0]
	for _, h := range b.Hdrs {
		if lowerStr(h.Name) == n {
			if pos < 0 {
				pos = len(hdrs)
				hdrs = append(hdrs, HdrField{Name: name, Val: valStr(val)})
			}
			continue
		}
		hdrs = append(hdrs, h)
	}
	b.Hdrs = hdrs
	if pos < 0 {
		b.Add(name, val)
	}
	return b
}

// SetBody sets the message body and the matching Content-Length header.
func (b *MsgBuilder) SetBody(body []byte) *MsgBuilder {
	b.Body = body
	return b.Set("Content-Length", len(body))
}

// Validate checks that the message can be rendered as single lines that
// Collector parses back: no start line token and no header value may
// contain a LF, and a header name must be non-empty and contain neither
// whitespace nor ':'.
func (b *MsgBuilder) Validate() error {
	for _, t := range b.FL {
		if SkipToEOL([]byte(t), 0) != len(t) {
			return ErrHdrBadFLine
		}
	}
	for _, h := range b.Hdrs {
		n := []byte(h.Name)
		if len(n) == 0 {
			return ErrHdrNoName
		}
		if SkipTokenStrict(n, 0) != len(n) {
			return ErrHdrBadName
		}
		if SkipToEOL([]byte(h.Val), 0) != len(h.Val) {
			return ErrHdrBadVal
		}
	}
	return nil
}

func (b *MsgBuilder) eol() string {
	if b.LF {
		return "\n"
	}
	return "\r\n"
}

// AppendTo appends the serialized message to dst and returns the
// extended slice.
func (b *MsgBuilder) AppendTo(dst []byte) []byte {
	eol := b.eol()
	for i, t := range b.FL {
		if i > 0 {
			dst = append(dst, ' ')
		}
		dst = append(dst, t...)
	}
	dst = append(dst, eol...)
	dst = b.AppendHeaders(dst)
	return append(dst, b.Body...)
}

// AppendHeaders appends only the header lines and the terminating empty
// line.
func (b *MsgBuilder) AppendHeaders(dst []byte) []byte {
	eol := b.eol()
	for _, h := range b.Hdrs {
		dst = append(dst, h.Name...)
		dst = append(dst, ": "...)
		dst = append(dst, h.Val...)
		dst = append(dst, eol...)
	}
	return append(dst, eol...)
}

// Bytes returns the serialized message.
func (b *MsgBuilder) Bytes() []byte {
	return b.AppendTo(nil)
}

// String implements the Stringer interface.
func (b *MsgBuilder) String() string {
	return string(b.Bytes())
}

func valStr(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
