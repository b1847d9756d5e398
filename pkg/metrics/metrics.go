// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics counts consent events with prometheus collectors.
package metrics

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/event"
)

// 📊 Metrics observes consent events
type Metrics struct {
	// Accepted / declined transitions by category
	Decisions *prometheus.CounterVec

	// One per save
	Saves prometheus.Counter

	// 1 when the last saved record grants the category, 0 otherwise
	Granted *prometheus.GaugeVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "cookieconsent_decisions_total",
			Help: "Accepted and declined events by consent category",
		}, []string{"kind", "handle"}), // kind: "accepted", "declined"

		Saves: factory.NewCounter(prometheus.CounterOpts{
			Name: "cookieconsent_saves_total",
			Help: "Preference records saved",
		}),

		Granted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cookieconsent_granted",
			Help: "Whether the last saved record grants the consent category",
		}, []string{"handle"}),
	}
}

// Attach subscribes m to every event kind.
func (m *Metrics) Attach(d *event.Dispatcher) {
	d.OnAll(m)
}

// Notify implements event.Subscriber.
func (m *Metrics) Notify(_ context.Context, ev event.Event) error {
	if m == nil {
		return nil
	}
	switch ev.Kind {
	case event.KindAccepted, event.KindDeclined:
		m.Decisions.WithLabelValues(string(ev.Kind), ev.Handle).Inc()
	case event.KindPreferencesUpdated:
		m.Saves.Inc()
		for _, d := range ev.Record {
			v := 0.0
			if d.Granted {
				v = 1
			}
			m.Granted.WithLabelValues(d.Handle).Set(v)
		}
	}
	return nil
}

// WriteText writes everything gathered by g in the text exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
