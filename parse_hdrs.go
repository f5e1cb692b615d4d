// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"strings"

	"github.com/intuitivelabs/bytescase"
)

// HdrT is used to hold the header type as a numeric constant.
type HdrT uint16

// HdrFlags packs several header values into bit flags.
type HdrFlags uint16

// Reset initializes a HdrFlags.
func (f *HdrFlags) Reset() {
	*f = 0
}

// Set sets the header flag corresponding to the passed header type.
func (f *HdrFlags) Set(Type HdrT) {
	*f |= 1 << Type
}

// Clear resets the header flag corresponding to the passed header type.
func (f *HdrFlags) Clear(Type HdrT) {
	*f &^= 1 << Type // equiv to & ^(...)
}

// Test returns true if the flag corresponding to the passed header type
// is set.
func (f HdrFlags) Test(Type HdrT) bool {
	return (f & (1 << Type)) != 0
}

// Any returns true if at least one of the passed header types is set.
func (f HdrFlags) Any(types ...HdrT) bool {
	for _, t := range types {
		if f&(1<<t) != 0 {
			return true
		}
	}
	return false
}

// HdrT header types constants.
const (
	HdrNone HdrT = iota
	HdrCLen
	HdrTrEncoding
	HdrUpgrade
	HdrCEncoding
	HdrCType
	HdrHost
	HdrServer
	HdrOrigin
	HdrConnection
	HdrOther // generic, not recognized header
)

// HdrFlags constants for each header type.
const (
	HdrCLenF       HdrFlags = 1 << HdrCLen
	HdrTrEncodingF HdrFlags = 1 << HdrTrEncoding
	HdrUpgradeF    HdrFlags = 1 << HdrUpgrade
	HdrCEncodingF  HdrFlags = 1 << HdrCEncoding
	HdrCTypeF      HdrFlags = 1 << HdrCType
	HdrHostF       HdrFlags = 1 << HdrHost
	HdrServerF     HdrFlags = 1 << HdrServer
	HdrOriginF     HdrFlags = 1 << HdrOrigin
	HdrConnectionF HdrFlags = 1 << HdrConnection
	HdrOtherF      HdrFlags = 1 << HdrOther
)

// pretty names for debugging and error reporting
var hdrTStr = [...]string{
	HdrNone:       "nil",
	HdrCLen:       "Content-Length",
	HdrTrEncoding: "Transfer-Encoding",
	HdrUpgrade:    "Upgrade",
	HdrCEncoding:  "Content-Encoding",
	HdrCType:      "Content-Type",
	HdrHost:       "Host",
	HdrServer:     "Server",
	HdrOrigin:     "Origin",
	HdrConnection: "Connection",
	HdrOther:      "Generic",
}

// String implements the Stringer interface.
func (t HdrT) String() string {
	if int(t) >= len(hdrTStr) || int(t) < 0 {
		return "invalid"
	}
	return hdrTStr[t]
}

// associates header name (as byte slice) to HdrT header type
type hdr2Type struct {
	n []byte
	t HdrT
}

// list of header-name <-> header type correspondence
// (always use lowercase)
var hdrName2Type = [...]hdr2Type{
	{n: []byte("content-length"), t: HdrCLen},
	{n: []byte("transfer-encoding"), t: HdrTrEncoding},
	{n: []byte("upgrade"), t: HdrUpgrade},
	{n: []byte("content-encoding"), t: HdrCEncoding},
	{n: []byte("content-type"), t: HdrCType},
	{n: []byte("host"), t: HdrHost},
	{n: []byte("server"), t: HdrServer},
	{n: []byte("connection"), t: HdrConnection},
	{n: []byte("origin"), t: HdrOrigin},
}

const (
	hnBitsLen   uint = 2 // after changing this re-run testing
	hnBitsFChar uint = 5
)

var hdrNameLookup [1 << (hnBitsLen + hnBitsFChar)][]hdr2Type

func hashHdrName(n []byte) int {
	// simple hash:
	//           1stchar & mC | (len &mL<< bitsFChar)
	const (
		mC = (1 << hnBitsFChar) - 1
		mL = (1 << hnBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << hnBitsFChar)
}

func init() {
	// init lookup arrays
	for _, h := range hdrName2Type {
		i := hashHdrName(h.n)
		hdrNameLookup[i] = append(hdrNameLookup[i], h)
	}
}

// GetHdrType returns the corresponding HdrT type for a given header name.
// The header name should not contain any leading or ending white space.
func GetHdrType(name []byte) HdrT {
	if len(name) == 0 {
		return HdrNone
	}
	i := hashHdrName(name)
	for _, h := range hdrNameLookup[i] {
		if bytescase.CmpEq(name, h.n) {
			return h.t
		}
	}
	return HdrOther
}

// lowerName returns the normalized (lowercase) form of a header name.
// Storage and all the lookups go through it.
func lowerName(n []byte) string {
	b := make([]byte, len(n))
	for i, c := range n {
		b[i] = bytescase.ByteToLower(c)
	}
	return string(b)
}

// lowerStr is lowerName for strings; it does not allocate if s is
// already lowercase.
func lowerStr(s string) string {
	for i := 0; i < len(s); i++ {
		if bytescase.ByteToLower(s[i]) != s[i] {
			return lowerName([]byte(s))
		}
	}
	return s
}

// HdrField is a parsed header: normalized (lowercase) name, value
// without leading and trailing whitespace and the header type.
type HdrField struct {
	Name string
	Val  string
	Type HdrT
}

// HdrLst is a multi-valued header collection. It keeps the insertion
// order and all the duplicates.
type HdrLst struct {
	PFlags HdrFlags   // parsed header types as flags
	Hdrs   []HdrField // all headers, in the order they were added
}

// Reset removes all the headers, keeping the allocated space.
func (hl *HdrLst) Reset() {
	hl.PFlags.Reset()
	hl.Hdrs = hl.Hdrs[:0]
}

// Len returns the number of headers, duplicates included.
func (hl *HdrLst) Len() int {
	return len(hl.Hdrs)
}

// Add normalizes the name and appends a new header.
// An existing header with the same name is never overwritten.
func (hl *HdrLst) Add(name, val string) {
	n := []byte(name)
	hl.add(HdrField{Name: lowerName(n), Val: val, Type: GetHdrType(n)})
}

func (hl *HdrLst) add(h HdrField) {
	hl.PFlags.Set(h.Type)
	hl.Hdrs = append(hl.Hdrs, h)
}

// Get returns the value of the first header with the given name
// (case-insensitive) and whether it was found.
func (hl *HdrLst) Get(name string) (string, bool) {
	n := lowerStr(name)
	for i := range hl.Hdrs {
		if hl.Hdrs[i].Name == n {
			return hl.Hdrs[i].Val, true
		}
	}
	return "", false
}

// Values returns all the values for name, in order.
func (hl *HdrLst) Values(name string) []string {
	n := lowerStr(name)
	var v []string
	for i := range hl.Hdrs {
		if hl.Hdrs[i].Name == n {
			v = append(v, hl.Hdrs[i].Val)
		}
	}
	return v
}

// Count returns how many headers named name are present.
func (hl *HdrLst) Count(name string) int {
	n := lowerStr(name)
	c := 0
	for i := range hl.Hdrs {
		if hl.Hdrs[i].Name == n {
			c++
		}
	}
	return c
}

// Has returns true if at least one header named name is present.
func (hl *HdrLst) Has(name string) bool {
	_, ok := hl.Get(name)
	return ok
}

// WithPrefix returns all the headers whose name starts with prefix
// (case-insensitive), e.g. "x-" or "content-".
func (hl *HdrLst) WithPrefix(prefix string) []HdrField {
	p := lowerStr(prefix)
	var r []HdrField
	for _, h := range hl.Hdrs {
		if strings.HasPrefix(h.Name, p) {
			r = append(r, h)
		}
	}
	return r
}

// GetHdr returns the first header of the requested type.
// If no corresponding header was parsed (or t is HdrNone or HdrOther)
// it returns nil.
func (hl *HdrLst) GetHdr(t HdrT) *HdrField {
	if t <= HdrNone || t >= HdrOther || !hl.PFlags.Test(t) {
		return nil
	}
	for i := range hl.Hdrs {
		if hl.Hdrs[i].Type == t {
			return &hl.Hdrs[i]
		}
	}
	return nil
}

// Clone returns a deep copy that shares nothing with hl.
func (hl *HdrLst) Clone() HdrLst {
	c := HdrLst{PFlags: hl.PFlags}
	if len(hl.Hdrs) > 0 {
		c.Hdrs = append([]HdrField(nil), hl.Hdrs...)
	}
	return c
}
