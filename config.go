// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"errors"

	"github.com/rs/zerolog"
)

// DefaultMaxLineLen is the default start line and header line length
// limit.
const DefaultMaxLineLen = 8192

// Config holds the Collector parsing options.
type Config struct {
	// MaxLineLen limits the length of a start line or header line, LF
	// excluded. A longer line is an error even before its LF arrives.
	// 0 means no limit.
	MaxLineLen int
	// StrictCLen makes an invalid Content-Length value a parse error
	// (ErrHdrBadCLen). When false the value is ignored and the previous
	// expected length is kept.
	StrictCLen bool
	// StrictNames rejects header names containing non-token chars
	// (ErrHdrBadName).
	StrictNames bool
	// Log receives parser debug and error events.
	Log zerolog.Logger
}

// DefaultConfig returns the default (lenient) parsing options with
// logging disabled.
func DefaultConfig() Config {
	return Config{
		MaxLineLen: DefaultMaxLineLen,
		Log:        zerolog.Nop(),
	}
}

// Validate checks the configuration values.
func (cfg *Config) Validate() error {
	if cfg.MaxLineLen < 0 {
		return errors.New("max line length must be >= 0")
	}
	return nil
}
