// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Command flowcat parses a stream of HTTP/1.x messages (a file or
// stdin), logs each message and optionally writes it back re-encoded.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/intuitivelabs/flowsp/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "flowcat: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("flowcat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "TOML config file")
	in := fs.String("in", "-", "input file, - for stdin")
	metricsFile := fs.String("metrics-file", "", "write the metrics in text format to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	lcfg := logging.DefaultConfig(logging.ProfileRuntime)
	lcfg.Level, _ = logging.ParseLevel(cfg.LogLevel)
	log := logging.New(stderr, "flowcat", logging.FromEnv(lcfg))

	r := stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	s := newStack(cfg, stdout, log)
	runErr := s.run(r, cfg.ChunkSize)
	if err := s.close(); err != nil {
		log.Warn().Err(err).Msg("stack teardown")
	}
	log.Info().Int("messages", s.msgs).Msg("done")
	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, s.metrics.Registry); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return runErr
}
