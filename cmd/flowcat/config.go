// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/intuitivelabs/flowsp"
	"github.com/intuitivelabs/flowsp/internal/logging"
	"github.com/rs/zerolog"
)

const (
	bodyCLen     = "content-length"
	bodyTillEOF  = "until-eof"
	defChunkSize = 512
)

type config struct {
	ChunkSize   int    `toml:"chunk_size"`
	MaxLineLen  int    `toml:"max_line_len"`
	StrictCLen  bool   `toml:"strict_content_length"`
	StrictNames bool   `toml:"strict_names"`
	Body        string `toml:"body"`
	Echo        bool   `toml:"echo"`
	LogLevel    string `toml:"log_level"`
}

func defaultConfig() config {
	return config{
		ChunkSize:  defChunkSize,
		MaxLineLen: flowsp.DefaultMaxLineLen,
		Body:       bodyCLen,
		LogLevel:   "info",
	}
}

// loadConfig reads a TOML config file over the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undec := meta.Undecoded(); len(undec) > 0 {
			keys := make([]string, 0, len(undec))
			for _, k := range undec {
				keys = append(keys, k.String())
			}
			return config{}, fmt.Errorf("config %s: unknown keys: %s",
				path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (cfg config) validate() error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0, got %d", cfg.ChunkSize)
	}
	pcfg := cfg.parserConfig(zerolog.Nop())
	if err := pcfg.Validate(); err != nil {
		return fmt.Errorf("max_line_len: %w", err)
	}
	switch cfg.Body {
	case bodyCLen, bodyTillEOF:
	default:
		return fmt.Errorf("body must be %q or %q, got %q", bodyCLen, bodyTillEOF, cfg.Body)
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}

// parserConfig returns the collector options, logging to log.
func (cfg config) parserConfig(log zerolog.Logger) flowsp.Config {
	pcfg := flowsp.DefaultConfig()
	pcfg.MaxLineLen = cfg.MaxLineLen
	pcfg.StrictCLen = cfg.StrictCLen
	pcfg.StrictNames = cfg.StrictNames
	pcfg.Log = log
	return pcfg
}

func (cfg config) bodyHandler() flowsp.BodyHandler {
	if cfg.Body == bodyTillEOF {
		return flowsp.BodyTillEOF{}
	}
	return flowsp.BodyCLen{}
}
