// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package metrics keeps the Prometheus counters of a layer stack.
package metrics

import (
	"github.com/intuitivelabs/flowsp/layer"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flowsp"

// Direction label values.
const (
	Up   = "up"
	Down = "down"
)

// Metrics groups the counters of one stack. Each instance has its own
// registry.
type Metrics struct {
	Registry *prometheus.Registry
	units    *prometheus.CounterVec
	messages prometheus.Counter
	faults   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		units: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "layer",
				Name:      "units_total",
				Help:      "Units passing through a layer.",
			},
			[]string{"layer", "direction"},
		),
		messages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "messages_total",
				Help:      "Fully parsed messages.",
			},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "parser",
				Name:      "faults_total",
				Help:      "Parse errors, by reason.",
			},
			[]string{"reason"},
		),
	}
	m.Registry.MustRegister(m.units, m.messages, m.faults)
	return m
}

func (m *Metrics) RecordUnit(layerName, direction string) {
	m.units.WithLabelValues(layerName, direction).Inc()
}

func (m *Metrics) RecordMessage() {
	m.messages.Inc()
}

func (m *Metrics) RecordFault(reason string) {
	m.faults.WithLabelValues(reason).Inc()
}

// Units returns the counter for one layer and direction.
func (m *Metrics) Units(layerName, direction string) prometheus.Counter {
	return m.units.WithLabelValues(layerName, direction)
}

// Messages returns the parsed messages counter.
func (m *Metrics) Messages() prometheus.Counter {
	return m.messages
}

// Faults returns the counter for one fault reason.
func (m *Metrics) Faults(reason string) prometheus.Counter {
	return m.faults.WithLabelValues(reason)
}

// Meter is a layer.Handler that counts the units going through it in
// each direction and forwards them unchanged.
type Meter[M any] struct {
	Name    string
	Metrics *Metrics
}

func (mt Meter[M]) FromUpper(p layer.Port[M], msg M) {
	mt.Metrics.RecordUnit(mt.Name, Down)
	if p.HasLower() {
		p.SendLower(msg)
	}
}

func (mt Meter[M]) FromLower(p layer.Port[M], msg M) {
	mt.Metrics.RecordUnit(mt.Name, Up)
	if p.HasUpper() {
		p.SendUpper(msg)
	}
}
