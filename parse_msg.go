// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"strconv"
	"strings"
)

// Msg contains a fully parsed HTTP message, detached from the Collector
// that produced it (it is not affected by later Feed() or reset calls).
type Msg struct {
	FL   []string // start line tokens (request or status line), may be empty
	HL   HdrLst   // headers
	CLen uint64   // last valid Content-Length value, 0 if none
	// Body holds the message body. The Collector does not fill it (the
	// body bytes are passed to Hooks.BodyData()), the Codec does.
	Body []byte
}

// Request returns true if the message is a HTTP request.
// A message with an empty start line is neither a request nor a reply.
func (m *Msg) Request() bool {
	return len(m.FL) > 0 && !strings.HasPrefix(m.FL[0], "HTTP/")
}

// Reply returns true if the message is a HTTP response.
func (m *Msg) Reply() bool {
	return len(m.FL) > 0 && strings.HasPrefix(m.FL[0], "HTTP/")
}

// Method returns the numeric HTTP method.
// For replies it returns MUndef.
func (m *Msg) Method() HTTPMethod {
	if m.Request() {
		return GetMethodNo([]byte(m.FL[0]))
	}
	return MUndef
}

// URI returns the request target, or "" for replies.
func (m *Msg) URI() string {
	if m.Request() && len(m.FL) > 1 {
		return m.FL[1]
	}
	return ""
}

// Version returns the protocol version token ("HTTP/1.1"), or "" if
// not present.
func (m *Msg) Version() string {
	switch {
	case m.Reply():
		return m.FL[0]
	case m.Request() && len(m.FL) > 2:
		return m.FL[2]
	}
	return ""
}

// Status returns the reply status code, or 0 for requests and
// malformed status lines.
func (m *Msg) Status() uint16 {
	if !m.Reply() || len(m.FL) < 2 {
		return 0
	}
	s, err := strconv.ParseUint(m.FL[1], 10, 16)
	if err != nil {
		return 0
	}
	return uint16(s)
}

// Reason returns the reply reason phrase (the tokens after the status
// joined by a single space).
func (m *Msg) Reason() string {
	if !m.Reply() || len(m.FL) < 3 {
		return ""
	}
	return strings.Join(m.FL[2:], " ")
}
