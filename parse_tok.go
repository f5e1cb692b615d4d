// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

// Character classes and skip helpers used by the line parsers.
// All the Skip* functions take a buffer and a start offset and return
// the offset of the first byte that stops the scan, or len(buf) if the
// end of the buffer was reached first. They never allocate.

// IsSpace returns true for whitespace that may surround tokens: SP, HTAB
// and CR (so that CR LF line ends are accepted as LF preceded by
// whitespace).
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

// IsEOL returns true only for LF.
func IsEOL(c byte) bool {
	return c == '\n'
}

// IsDelim returns true for the bytes that end a header name: LF and ':'.
func IsDelim(c byte) bool {
	return c == '\n' || c == ':'
}

// SkipSpaces returns the offset of the first non-space byte.
func SkipSpaces(buf []byte, offs int) int {
	i := offs
	for i < len(buf) && IsSpace(buf[i]) {
		i++
	}
	return i
}

// SkipToEOL returns the offset of the next LF.
func SkipToEOL(buf []byte, offs int) int {
	i := offs
	for i < len(buf) && !IsEOL(buf[i]) {
		i++
	}
	return i
}

// SkipToken returns the offset of the first space or LF.
func SkipToken(buf []byte, offs int) int {
	i := offs
	for i < len(buf) && !IsSpace(buf[i]) && !IsEOL(buf[i]) {
		i++
	}
	return i
}

// SkipTokenStrict is like SkipToken, but it stops also on ':'.
// It is used for header names, so that "Name:value" (no space before
// the ':') is split correctly.
func SkipTokenStrict(buf []byte, offs int) int {
	i := offs
	for i < len(buf) && !IsSpace(buf[i]) && !IsDelim(buf[i]) {
		i++
	}
	return i
}
