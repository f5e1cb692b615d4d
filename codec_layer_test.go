// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"testing"

	"github.com/intuitivelabs/flowsp/layer"
)

// unitSink is a leaf layer collecting the received units.
type unitSink struct {
	units []Unit
}

func (s *unitSink) FromUpper(u Unit) { s.units = append(s.units, u) }
func (s *unitSink) FromLower(u Unit) { s.units = append(s.units, u) }
func (s *unitSink) Close() error     { return nil }

func newCodecStack(cfg *Config, b BodyHandler) (*Codec, *layer.Node[Unit, layer.Borrowed, layer.Borrowed], *unitSink, *unitSink) {
	cd := NewCodec(cfg, b)
	n := layer.New[Unit, layer.Borrowed, layer.Borrowed](cd)
	top, bottom := &unitSink{}, &unitSink{}
	n.SetUpper(top)
	n.SetLower(bottom)
	return cd, n, top, bottom
}

func TestCodecDecode(t *testing.T) {
	stream := []byte("GET /a HTTP/1.1\r\nHost: x\r\n\r\n" +
		"HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nbody")
	for k := 0; k < 20; k++ {
		_, n, top, _ := newCodecStack(nil, nil)
		for _, p := range randPieces(stream, 12) {
			n.FromLower(Unit{Raw: p})
		}
		n.FromLower(Unit{EOF: true})
		if len(top.units) != 3 {
			t.Fatalf("expected 3 units up, got %d: %+v\n", len(top.units), top.units)
		}
		m := top.units[0].Msg
		if m == nil || m.URI() != "/a" || !m.HL.Has("host") {
			t.Errorf("bad first message %+v\n", m)
		}
		m = top.units[1].Msg
		if m == nil || m.Status() != 200 || string(m.Body) != "body" {
			t.Errorf("bad second message %+v\n", m)
		}
		if !top.units[2].EOF {
			t.Errorf("expected EOF unit, got %+v\n", top.units[2])
		}
	}
}

func TestCodecEncode(t *testing.T) {
	cd, n, _, bottom := newCodecStack(nil, nil)
	cd.LF = true
	m := &Msg{FL: []string{"GET", "/", "HTTP/1.1"}}
	m.HL.Add("Host", "h")
	n.FromUpper(Unit{Msg: m})
	n.FromUpper(Unit{Raw: []byte("raw"), EOF: true})
	if len(bottom.units) != 2 {
		t.Fatalf("expected 2 units down, got %d\n", len(bottom.units))
	}
	if s := string(bottom.units[0].Raw); s != "GET / HTTP/1.1\nhost: h\n\n" {
		t.Errorf("encoded %q\n", s)
	}
	if bottom.units[0].Msg != nil {
		t.Errorf("encoded unit still carries the message\n")
	}
	if u := bottom.units[1]; string(u.Raw) != "raw" || !u.EOF {
		t.Errorf("raw unit changed: %+v\n", u)
	}

	// a body always goes down framed
	n.FromUpper(Unit{Msg: &Msg{FL: []string{"POST", "/"}, Body: []byte("abc")}})
	if s := string(bottom.units[2].Raw); s != "POST /\nContent-Length: 3\n\nabc" {
		t.Errorf("encoded %q\n", s)
	}
}

func TestCodecEncodeInvalid(t *testing.T) {
	_, n, top, bottom := newCodecStack(nil, nil)
	m := &Msg{FL: []string{"GET", "/"}}
	m.HL.Add("X-A", "1\nX-B: 2")
	n.FromUpper(Unit{Msg: m})
	if len(bottom.units) != 0 {
		t.Errorf("invalid message sent down: %q\n", bottom.units[0].Raw)
	}
	if len(top.units) != 1 || top.units[0].Err != ErrHdrBadVal {
		t.Errorf("expected ErrHdrBadVal up, got %+v\n", top.units)
	}
}

func TestCodecErrorOnce(t *testing.T) {
	cd, n, top, _ := newCodecStack(nil, nil)
	n.FromLower(Unit{Raw: []byte("GET / HTTP/1.1\nbroken\n")})
	n.FromLower(Unit{Raw: []byte("more\n\n")})
	if len(top.units) != 1 || top.units[0].Err != ErrHdrNoColon {
		t.Fatalf("expected one ErrHdrNoColon unit, got %+v\n", top.units)
	}
	if cd.Collector().Err() != ErrHdrNoColon {
		t.Errorf("collector error %v\n", cd.Collector().Err())
	}
	// after a reset the codec decodes again
	cd.Collector().Reset()
	n.FromLower(Unit{Raw: []byte("GET / HTTP/1.1\n\n")})
	if len(top.units) != 2 || top.units[1].Msg == nil {
		t.Errorf("no message after reset: %+v\n", top.units)
	}
}

func TestCodecTillEOF(t *testing.T) {
	_, n, top, _ := newCodecStack(nil, BodyTillEOF{})
	n.FromLower(Unit{Raw: []byte("HTTP/1.0 200 OK\n\npart1 ")})
	n.FromLower(Unit{Raw: []byte("part2")})
	if len(top.units) != 0 {
		t.Fatalf("unit sent before EOF: %+v\n", top.units)
	}
	n.FromLower(Unit{EOF: true})
	if len(top.units) != 2 || top.units[0].Msg == nil ||
		string(top.units[0].Msg.Body) != "part1 part2" || !top.units[1].EOF {
		t.Errorf("bad units at EOF: %+v\n", top.units)
	}
}

func TestCodecNoNeighbours(t *testing.T) {
	cd := NewCodec(nil, nil)
	n := layer.New[Unit, layer.Borrowed, layer.Borrowed](cd)
	// no upper and no lower: units are dropped, nothing panics
	n.FromLower(Unit{Raw: []byte("GET / HTTP/1.1\n\n"), EOF: true})
	n.FromUpper(Unit{Msg: &Msg{FL: []string{"GET", "/"}}})
	if !cd.Collector().Finalized() {
		t.Errorf("EOF not processed\n")
	}
}

func TestCodecPassThrough(t *testing.T) {
	_, n, top, _ := newCodecStack(nil, nil)
	m := &Msg{FL: []string{"X"}}
	n.FromLower(Unit{Msg: m})
	n.FromLower(Unit{Err: ErrHdrBug})
	if len(top.units) != 2 || top.units[0].Msg != m || top.units[1].Err != ErrHdrBug {
		t.Errorf("units not forwarded: %+v\n", top.units)
	}
}
