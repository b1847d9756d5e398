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

// Package event is the consent lifecycle pub/sub: accepted, declined and
// preferences_updated, delivered synchronously to subscribers of that kind.
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/walteh/cookieconsent/pkg/preference"
)

// 🏷️ Kind names a consent lifecycle event
type Kind string

const (
	// KindAccepted carries the handle of a category that became granted.
	KindAccepted Kind = "accepted"
	// KindDeclined carries the handle of a category that became (or stayed) declined.
	KindDeclined Kind = "declined"
	// KindPreferencesUpdated carries the full record written by a save.
	KindPreferencesUpdated Kind = "preferences_updated"
)

// Kinds lists every recognized kind.
func Kinds() []Kind {
	return []Kind{KindAccepted, KindDeclined, KindPreferencesUpdated}
}

// ParseKind maps a name used by page code to a Kind.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, true
		}
	}
	return "", false
}

// 📨 Event is one notification handed to subscribers. Handle is set for
// accepted/declined, Record for preferences_updated.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Kind       Kind              `json:"kind"`
	Handle     string            `json:"handle,omitempty"`
	Record     preference.Record `json:"record,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`

	// Replayed marks decisions restored from a stored record at boot
	// rather than made by this run.
	Replayed bool `json:"replayed,omitempty"`
}

// Accepted builds an accepted event for handle.
func Accepted(handle string) Event {
	return Event{Kind: KindAccepted, Handle: handle}
}

// Declined builds a declined event for handle.
func Declined(handle string) Event {
	return Event{Kind: KindDeclined, Handle: handle}
}

// PreferencesUpdated builds a preferences_updated event carrying a copy of r.
func PreferencesUpdated(r preference.Record) Event {
	return Event{Kind: KindPreferencesUpdated, Record: r.Clone()}
}

// Decision builds accepted or declined depending on granted.
func Decision(granted bool, handle string) Event {
	if granted {
		return Accepted(handle)
	}
	return Declined(handle)
}

// Replay builds the decision event for a choice restored from storage.
func Replay(granted bool, handle string) Event {
	ev := Decision(granted, handle)
	ev.Replayed = true
	return ev
}

func (e Event) String() string {
	if e.Kind == KindPreferencesUpdated {
		return fmt.Sprintf("%s(%d decisions)", e.Kind, len(e.Record))
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Handle)
}

// 🔔 Subscriber receives events of the kind it was registered for
type Subscriber interface {
	Notify(ctx context.Context, ev Event) error
}

// SubscriberFunc allows plain functions to satisfy Subscriber.
type SubscriberFunc func(ctx context.Context, ev Event) error

// Notify calls fn.
func (fn SubscriberFunc) Notify(ctx context.Context, ev Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, ev)
}

// ❌ SubscriberError reports the subscriber that stopped a dispatch.
type SubscriberError struct {
	Event    Event
	Position int
	Err      error
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %d failed on %s: %v", e.Position, e.Event, e.Err)
}

func (e *SubscriberError) Unwrap() error {
	return e.Err
}
