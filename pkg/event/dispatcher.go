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

package event

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// 📡 Dispatcher is a synchronous pub/sub keyed by event kind. Subscriptions
// live as long as the dispatcher; there is no unsubscribe.
type Dispatcher struct {
	subscribers map[Kind][]Subscriber
	now         func() time.Time
	newID       func() uuid.UUID
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithClock sets the clock used to stamp events.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithIDs sets the event ID generator.
func WithIDs(newID func() uuid.UUID) DispatcherOption {
	return func(d *Dispatcher) {
		d.newID = newID
	}
}

// 🏭 NewDispatcher creates an empty dispatcher
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		subscribers: make(map[Kind][]Subscriber),
		now:         time.Now,
		newID:       uuid.New,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// On registers sub for kind. Subscribers of one kind run in registration order.
func (d *Dispatcher) On(kind Kind, sub Subscriber) {
	if sub == nil {
		return
	}
	d.subscribers[kind] = append(d.subscribers[kind], sub)
}

// OnFunc is On for a plain function.
func (d *Dispatcher) OnFunc(kind Kind, fn func(ctx context.Context, ev Event) error) {
	d.On(kind, SubscriberFunc(fn))
}

// OnAll registers sub for every recognized kind.
func (d *Dispatcher) OnAll(sub Subscriber) {
	for _, k := range Kinds() {
		d.On(k, sub)
	}
}

// Count returns how many subscribers are registered for kind.
func (d *Dispatcher) Count(kind Kind) int {
	return len(d.subscribers[kind])
}

// 📣 Dispatch stamps ev and hands it to each subscriber of ev.Kind in turn.
// The first subscriber error stops the loop and is returned as a
// *SubscriberError; later subscribers are not called. Panics propagate.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	if ev.ID == uuid.Nil {
		ev.ID = d.newID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = d.now()
	}

	subs := d.subscribers[ev.Kind]
	zerolog.Ctx(ctx).Trace().
		Str("kind", string(ev.Kind)).
		Str("handle", ev.Handle).
		Int("subscribers", len(subs)).
		Msg("dispatching event")

	for i, sub := range subs {
		if err := sub.Notify(ctx, ev); err != nil {
			return &SubscriberError{Event: ev, Position: i, Err: err}
		}
	}
	return nil
}
