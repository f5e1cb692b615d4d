// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

// streamBuf holds the unconsumed part of the input stream.
// Consuming from the front only moves an offset; the dead prefix is
// reclaimed on append, when it is at least half of the capacity.
type streamBuf struct {
	b    []byte
	offs int // start of unconsumed data inside b
}

// Bytes returns the unconsumed data. The slice is valid until the next
// append.
func (sb *streamBuf) Bytes() []byte {
	return sb.b[sb.offs:]
}

// Len returns the number of unconsumed bytes.
func (sb *streamBuf) Len() int {
	return len(sb.b) - sb.offs
}

// Append adds p at the end.
func (sb *streamBuf) Append(p []byte) {
	if len(p) == 0 {
		return
	}
	if sb.offs > 0 && (sb.offs >= cap(sb.b)/2 || sb.offs == len(sb.b)) {
		n := copy(sb.b, sb.b[sb.offs:])
		sb.b = sb.b[:n]
		sb.offs = 0
	}
	sb.b = append(sb.b, p...)
}

// Consume drops the first n unconsumed bytes.
func (sb *streamBuf) Consume(n int) {
	if n >= sb.Len() {
		sb.b = sb.b[:0]
		sb.offs = 0
		return
	}
	sb.offs += n
}

// Reset drops everything, keeping the allocated space.
func (sb *streamBuf) Reset() {
	sb.b = sb.b[:0]
	sb.offs = 0
}
