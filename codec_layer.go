// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"github.com/intuitivelabs/flowsp/layer"
)

// Unit is the message type carried by a HTTP layer stack: raw bytes
// below the Codec, parsed messages above it.
type Unit struct {
	Raw []byte // raw stream data
	Msg *Msg   // parsed (or to be serialized) message
	EOF bool   // end of stream
	Err error  // parse error, sent up once
}

// Codec is a layer.Handler that decodes the bytes coming from below into
// Msg units sent up and encodes the Msg units coming from above into
// bytes sent down. Other units pass unchanged.
type Codec struct {
	c    Collector
	body []byte           // body of the current message
	port layer.Port[Unit] // valid only during FromLower
	// LF makes the encoder use bare LF line ends.
	LF bool
}

// NewCodec returns a Codec parsing with cfg (nil means DefaultConfig())
// and the body handler b (nil means BodyCLen).
func NewCodec(cfg *Config, b BodyHandler) *Codec {
	cd := &Codec{}
	cd.c.Init(cfg, codecHooks{cd}, b)
	return cd
}

// Collector returns the decoder used by the codec.
func (cd *Codec) Collector() *Collector {
	return &cd.c
}

// FromLower implements layer.Handler.
func (cd *Codec) FromLower(p layer.Port[Unit], u Unit) {
	cd.port = p
	defer func() { cd.port = nil }()
	if len(u.Raw) > 0 {
		failed := cd.c.Err() != nil
		if err := cd.c.Feed(u.Raw); err != nil && !failed {
			cd.up(Unit{Err: err})
		}
	}
	if u.EOF {
		cd.c.Finalize()
		cd.up(Unit{EOF: true})
	}
	if u.Msg != nil || u.Err != nil {
		cd.up(u)
	}
}

// FromUpper implements layer.Handler. A message that fails
// MsgBuilder.Validate() is not sent down; the error goes back up.
func (cd *Codec) FromUpper(p layer.Port[Unit], u Unit) {
	if u.Msg != nil {
		b := FromMsg(u.Msg)
		if err := b.Validate(); err != nil {
			cd.c.log.Warn().Err(err).Strs("start_line", b.FL).
				Msg("message not encoded")
			if p.HasUpper() {
				p.SendUpper(Unit{Err: err})
			}
			return
		}
		b.LF = cd.LF
		u = Unit{Raw: b.Bytes(), EOF: u.EOF}
	}
	if p.HasLower() {
		p.SendLower(u)
	}
}

func (cd *Codec) up(u Unit) {
	if cd.port != nil && cd.port.HasUpper() {
		cd.port.SendUpper(u)
		return
	}
	cd.c.log.Debug().Bool("msg", u.Msg != nil).Bool("eof", u.EOF).
		AnErr("err", u.Err).Msg("no upper layer, unit dropped")
}

// codecHooks collects the body and sends the completed messages up.
type codecHooks struct {
	cd *Codec
}

func (h codecHooks) HeaderEnd(*Collector) {}

func (h codecHooks) BodyBegin(*Collector) {
	h.cd.body = nil
}

func (h codecHooks) BodyData(_ *Collector, b []byte) {
	h.cd.body = append(h.cd.body, b...)
}

func (h codecHooks) BodyEnd(_ *Collector, m *Msg) {
	m.Body = h.cd.body
	h.cd.body = nil
	h.cd.up(Unit{Msg: m})
}

func (h codecHooks) ProcessEnd(*Collector) {}
