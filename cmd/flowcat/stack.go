// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/intuitivelabs/flowsp"
	"github.com/intuitivelabs/flowsp/internal/metrics"
	"github.com/intuitivelabs/flowsp/layer"
	"github.com/rs/zerolog"
)

type unitPort = layer.Port[flowsp.Unit]

// stack is wire -> codec -> meter -> app. Every node owns its lower
// neighbour and borrows the upper one: closing app closes everything.
type stack struct {
	app     *layer.Node[flowsp.Unit, layer.Borrowed, layer.Exclusive]
	wire    *layer.Node[flowsp.Unit, layer.Borrowed, layer.Borrowed]
	codec   *flowsp.Codec
	metrics *metrics.Metrics
	log     zerolog.Logger
	echo    bool
	msgs    int
	err     error
	out     io.Writer
	outErr  error
}

func newStack(cfg config, out io.Writer, log zerolog.Logger) *stack {
	s := &stack{
		metrics: metrics.New(),
		log:     log,
		echo:    cfg.Echo,
		out:     out,
	}
	pcfg := cfg.parserConfig(log.With().Str("layer", "codec").Logger())
	s.codec = flowsp.NewCodec(&pcfg, cfg.bodyHandler())

	s.wire = layer.New[flowsp.Unit, layer.Borrowed, layer.Borrowed](
		layer.HandlerFuncs[flowsp.Unit]{Upper: s.write})
	codec := layer.New[flowsp.Unit, layer.Borrowed, layer.Exclusive](s.codec)
	meter := layer.New[flowsp.Unit, layer.Borrowed, layer.Exclusive](
		metrics.Meter[flowsp.Unit]{Name: "meter", Metrics: s.metrics})
	s.app = layer.New[flowsp.Unit, layer.Borrowed, layer.Exclusive](
		layer.HandlerFuncs[flowsp.Unit]{Lower: s.deliver})

	layer.Link[flowsp.Unit](codec, s.wire)
	layer.Link[flowsp.Unit](meter, codec)
	layer.Link[flowsp.Unit](s.app, meter)
	return s
}

// write is the wire end of the stack: raw bytes go to out.
func (s *stack) write(_ unitPort, u flowsp.Unit) {
	if len(u.Raw) == 0 || s.outErr != nil {
		return
	}
	if _, err := s.out.Write(u.Raw); err != nil {
		s.outErr = fmt.Errorf("write output: %w", err)
	}
}

// deliver is the application end of the stack.
func (s *stack) deliver(p unitPort, u flowsp.Unit) {
	switch {
	case u.Err != nil:
		s.metrics.RecordFault(u.Err.Error())
		s.err = u.Err
		s.log.Error().Err(u.Err).Int("messages", s.msgs).Msg("parse failed")
	case u.Msg != nil:
		s.msgs++
		s.metrics.RecordMessage()
		m := u.Msg
		ev := s.log.Info().Int("n", s.msgs).Strs("start_line", m.FL).
			Int("headers", m.HL.Len()).Int("body", len(m.Body))
		if m.Request() {
			ev = ev.Stringer("method", m.Method()).Str("uri", m.URI())
		} else if m.Reply() {
			ev = ev.Uint16("status", m.Status())
		}
		ev.Msg("message")
		if s.echo && p.HasLower() {
			p.SendLower(flowsp.Unit{Msg: m})
		}
	case u.EOF:
		s.log.Debug().Int("messages", s.msgs).Msg("end of stream")
	}
}

// run reads r in chunkSize pieces and pushes them through the stack.
func (s *stack) run(r io.Reader, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for s.err == nil {
		n, err := r.Read(buf)
		if n > 0 {
			s.wire.FromLower(flowsp.Unit{Raw: buf[:n]})
		}
		if errors.Is(err, io.EOF) {
			s.wire.FromLower(flowsp.Unit{EOF: true})
			break
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
	if s.err != nil {
		return s.err
	}
	if rest := s.codec.Collector().Buffered(); rest > 0 {
		s.log.Warn().Int("bytes", rest).Msg("incomplete message at end of stream")
	}
	return s.outErr
}

func (s *stack) close() error {
	return s.app.Close()
}
