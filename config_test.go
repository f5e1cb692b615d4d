// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package flowsp

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxLineLen != DefaultMaxLineLen || cfg.StrictCLen || cfg.StrictNames {
		t.Errorf("unexpected defaults %+v\n", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config: %v\n", err)
	}
	cfg.MaxLineLen = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("unlimited line length: %v\n", err)
	}
	cfg.MaxLineLen = -1
	if err := cfg.Validate(); err == nil {
		t.Errorf("negative line length accepted\n")
	}
}
