// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

// ErrorHdr is the error type returned by the parsing functions.
// The zero value (ErrHdrOK) means success.
type ErrorHdr uint32

// Possible ErrorHdr values.
const (
	ErrHdrOK          ErrorHdr = iota
	ErrHdrNoColon              // header line without ':' after the name
	ErrHdrNoName               // empty header name
	ErrHdrBadName              // invalid char in header name (strict mode)
	ErrHdrBadCLen              // invalid Content-Length value (strict mode)
	ErrHdrLineTooLong          // start line or header line too long
	ErrHdrBadVal               // header value with a line end (builder)
	ErrHdrBadFLine             // start line token with a line end (builder)
	ErrHdrBug                  // internal error, unexpected state
)

var errHdrStr = [...]string{
	ErrHdrOK:          "no error",
	ErrHdrNoColon:     "missing ':' after header name",
	ErrHdrNoName:      "empty header name",
	ErrHdrBadName:     "invalid header name",
	ErrHdrBadCLen:     "invalid Content-Length value",
	ErrHdrLineTooLong: "line too long",
	ErrHdrBadVal:      "invalid header value",
	ErrHdrBadFLine:    "invalid start line token",
	ErrHdrBug:         "internal bug",
}

// Error implements the error interface.
func (e ErrorHdr) Error() string {
	if int(e) >= len(errHdrStr) {
		return "unknown error"
	}
	return errHdrStr[e]
}

// String implements the Stringer interface.
func (e ErrorHdr) String() string {
	return e.Error()
}
