// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBuilderBytes(t *testing.T) {
	b := NewRequest("POST", "/upload").
		Add("Host", "example.org").
		Add("X-Num", 42).
		Add("X-Flag", true).
		SetBody([]byte("hello"))
	exp := "POST /upload HTTP/1.1\r\n" +
		"Host: example.org\r\n" +
		"X-Num: 42\r\n" +
		"X-Flag: true\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"hello"
	if s := b.String(); s != exp {
		t.Errorf("Bytes() = %q, expected %q\n", s, exp)
	}
	b.LF = true
	if s := string(b.AppendHeaders([]byte("x"))); s !=
		"xHost: example.org\nX-Num: 42\nX-Flag: true\nContent-Length: 5\n\n" {
		t.Errorf("AppendHeaders() = %q\n", s)
	}
}

func TestBuilderResponse(t *testing.T) {
	if s := NewResponse(404).String(); s != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Errorf("NewResponse(404) = %q\n", s)
	}
	if s := NewResponse(799).String(); s != "HTTP/1.1 799\r\n\r\n" {
		t.Errorf("NewResponse(799) = %q\n", s)
	}
}

func TestBuilderSet(t *testing.T) {
	b := &MsgBuilder{FL: []string{"GET", "/"}}
	b.Add("X-A", "1").Add("Via", "p").Add("x-a", "2").Add("X-A", "3")
	b.Set("x-A", "new")
	exp := []HdrField{{Name: "x-A", Val: "new"}, {Name: "Via", Val: "p"}}
	if !reflect.DeepEqual(b.Hdrs, exp) {
		t.Errorf("Set(): %+v, expected %+v\n", b.Hdrs, exp)
	}
	b.Set("Host", "h")
	if len(b.Hdrs) != 3 || b.Hdrs[2].Name != "Host" {
		t.Errorf("Set() new header: %+v\n", b.Hdrs)
	}
	b.SetBody([]byte("ab")).SetBody([]byte("abcd"))
	var v []string
	for _, h := range b.Hdrs {
		if h.Name == "Content-Length" {
			v = append(v, h.Val)
		}
	}
	if !reflect.DeepEqual(v, []string{"4"}) {
		t.Errorf("SetBody(): Content-Length values %q\n", v)
	}
}

func TestValStr(t *testing.T) {
	tests := [...]struct {
		v interface{}
		s string
	}{
		{"s", "s"},
		{[]byte("b"), "b"},
		{-7, "-7"},
		{int64(1) << 40, "1099511627776"},
		{uint64(18446744073709551615), "18446744073709551615"},
		{false, "false"},
		{time.Second, "1s"},
		{MPatch, "PATCH"},
		{3.5, "3.5"},
		{nil, "<nil>"},
	}
	for _, c := range tests {
		if s := valStr(c.v); s != c.s {
			t.Errorf("valStr(%#v) = %q, expected %q\n", c.v, s, c.s)
		}
	}
}

// built messages parsed back give the same message
func TestBuilderRoundTrip(t *testing.T) {
	builders := []*MsgBuilder{
		NewRequest("GET", "/index.html").Add("Host", "a.b"),
		NewRequest("PUT", "/f").Add("content-type", "text/plain").
			Add("x-dup", "1").Add("x-dup", "2").SetBody([]byte("data\r\n\r\nmore")),
		NewResponse(200).Add("server", "flowsp").SetBody([]byte("ok")),
		NewResponse(204),
	}
	for _, lf := range []bool{false, true} {
		var stream []byte
		for _, b := range builders {
			b.LF = lf
			stream = b.AppendTo(stream)
		}
		for k := 0; k < 10; k++ {
			_, h, err := feedPieces(nil, nil, randPieces(stream, 10))
			if err != nil {
				t.Fatalf("lf %v: unexpected error %v\n", lf, err)
			}
			if len(h.msgs) != len(builders) {
				t.Fatalf("lf %v: got %d messages, expected %d\n",
					lf, len(h.msgs), len(builders))
			}
			for i, b := range builders {
				m := &h.msgs[i]
				// the reason phrase is split in several tokens
				if strings.Join(m.FL, " ") != strings.Join(b.FL, " ") {
					t.Errorf("lf %v msg %d: start line %q, expected %q\n",
						lf, i, m.FL, b.FL)
				}
				if m.HL.Len() != len(b.Hdrs) {
					t.Errorf("lf %v msg %d: %d headers, expected %d\n",
						lf, i, m.HL.Len(), len(b.Hdrs))
				}
				if string(m.Body) != string(b.Body) {
					t.Errorf("lf %v msg %d: body %q, expected %q\n",
						lf, i, m.Body, b.Body)
				}
				// rebuilding the parsed message gives the same bytes,
				// except for the normalized header names
				r := FromMsg(m)
				r.LF = lf
				e := *b
				e.Hdrs = nil
				for _, hf := range b.Hdrs {
					e.Add(lowerStr(hf.Name), hf.Val)
				}
				if rb, bb := r.String(), e.String(); rb != bb {
					t.Errorf("lf %v msg %d: rebuilt %q, expected %q\n",
						lf, i, rb, bb)
				}
			}
		}
	}
}

// the encoded Content-Length always matches the body
func TestFromMsgFraming(t *testing.T) {
	// parsed until EOF: no Content-Length, then a wrong one
	var tillEOF []Msg
	for _, in := range []string{
		"HTTP/1.0 200 OK\nserver: s\n\nhello",
		"HTTP/1.0 200 OK\ncontent-length: 2\nx-a: 1\n\nhello",
	} {
		c, h, err := feedPieces(nil, BodyTillEOF{}, [][]byte{[]byte(in)})
		if err != nil {
			t.Fatalf("%q: unexpected error %v\n", in, err)
		}
		c.Finalize()
		if len(h.msgs) != 1 {
			t.Fatalf("%q: %d messages\n", in, len(h.msgs))
		}
		tillEOF = append(tillEOF, h.msgs[0])
	}

	post := Msg{FL: []string{"POST", "/", "HTTP/1.1"}, Body: []byte("abc")}
	dup := Msg{FL: []string{"PUT", "/", "HTTP/1.1"}, Body: []byte("abcd")}
	dup.HL.Add("Content-Length", "4")
	dup.HL.Add("Content-Length", "bad")
	empty := Msg{FL: []string{"GET", "/", "HTTP/1.1"}}
	empty.HL.Add("Content-Length", "5")

	tests := [...]struct {
		m    *Msg
		desc string
		hdrs string // expected header lines
	}{
		{&tillEOF[0], "till EOF, no length", "server: s\r\nContent-Length: 5\r\n"},
		{&tillEOF[1], "till EOF, wrong length",
			"Content-Length: 5\r\nx-a: 1\r\n"},
		{&post, "built, no length", "Content-Length: 3\r\n"},
		{&dup, "duplicated length", "Content-Length: 4\r\n"},
		{&empty, "no body, non-zero length", "Content-Length: 0\r\n"},
	}
	for _, tc := range tests {
		b := FromMsg(tc.m)
		if s := string(b.AppendHeaders(nil)); s != tc.hdrs+"\r\n" {
			t.Errorf("%q: headers %q, expected %q\n", tc.desc, s, tc.hdrs+"\r\n")
		}
		// followed by another message: the body must not leak into it
		stream := append(b.Bytes(), "GET /next HTTP/1.1\r\n\r\n"...)
		c, h, err := feedPieces(nil, nil, randPieces(stream, 6))
		if err != nil {
			t.Fatalf("%q: unexpected error %v\n", tc.desc, err)
		}
		if len(h.msgs) != 2 || string(h.msgs[0].Body) != string(tc.m.Body) ||
			h.msgs[1].URI() != "/next" || c.Buffered() != 0 {
			t.Errorf("%q: bad re-parse %+v (rest %q)\n", tc.desc, h.msgs, c.Data())
		}
	}

	// a matching length is kept as it was
	ok := Msg{FL: []string{"POST", "/", "HTTP/1.1"}, Body: []byte("ab")}
	ok.HL.Add("content-length", "2")
	ok.HL.Add("x-b", "1")
	if s := FromMsg(&ok).String(); s != "POST / HTTP/1.1\r\ncontent-length: 2\r\nx-b: 1\r\n\r\nab" {
		t.Errorf("matching length changed: %q\n", s)
	}
}

func TestBuilderValidate(t *testing.T) {
	tests := [...]struct {
		b   *MsgBuilder
		err error
	}{
		{NewRequest("GET", "/").Add("Host", "h").Add("X-Empty", ""), nil},
		{NewResponse(404).Add("bad(name)", "v\tw"), nil},
		{NewRequest("GET", "/a\nb"), ErrHdrBadFLine},
		{NewRequest("GET", "/").Add("", "v"), ErrHdrNoName},
		{NewRequest("GET", "/").Add("X-A:", "v"), ErrHdrBadName},
		{NewRequest("GET", "/").Add("X A", "v"), ErrHdrBadName},
		{NewRequest("GET", "/").Add("X-A", "v\nInjected: 1"), ErrHdrBadVal},
	}
	for i, tc := range tests {
		if err := tc.b.Validate(); err != tc.err {
			t.Errorf("test %d: Validate() = %v, expected %v\n", i, err, tc.err)
		}
	}
}
