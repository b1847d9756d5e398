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

package engine

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/cookie"
	"github.com/walteh/cookieconsent/pkg/event"
	"github.com/walteh/cookieconsent/pkg/preference"
	"github.com/walteh/cookieconsent/pkg/registry"
	"github.com/walteh/cookieconsent/pkg/widget"
)

const (
	DefaultCookieName = "COOKIE_NOTICE_PREFERENCES"
	DefaultTTLDays    = 14
)

var (
	ErrMissingControl     = errors.Base("no control bound to category")
	ErrNotInitialized     = errors.Base("engine not initialized")
	ErrAlreadyInitialized = errors.Base("engine already initialized")
)

// 🚦 State of the engine lifecycle
type State int

const (
	StateUninitialized State = iota
	StateIdle
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSaving:
		return "saving"
	default:
		return "uninitialized"
	}
}

// 🔧 Options wires an engine to its collaborators
type Options struct {
	// CookieName defaults to DefaultCookieName.
	CookieName string
	// TTLDays defaults to DefaultTTLDays when zero.
	TTLDays    int
	Attributes cookie.Attributes

	Registry *registry.Registry
	Store    cookie.Store
	Controls widget.Controls

	// Widget and Dispatcher are created when nil.
	Widget     *widget.Widget
	Dispatcher *event.Dispatcher
}

// ⚙️ Engine reconciles the stored preference record with the registry and
// the controls on the collection surface.
type Engine struct {
	cookieName string
	ttlDays    int
	attrs      cookie.Attributes

	registry   *registry.Registry
	store      cookie.Store
	controls   widget.Controls
	widget     *widget.Widget
	dispatcher *event.Dispatcher

	state          State
	hasPriorRecord bool
}

// 🏭 New validates opts and returns an uninitialized engine.
func New(opts Options) (*Engine, error) {
	if opts.Registry == nil {
		return nil, errors.New("registry is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cookie store is required")
	}
	if opts.Controls == nil {
		return nil, errors.New("controls are required")
	}
	if opts.TTLDays < 0 {
		return nil, errors.Errorf("cookie ttl must not be negative, got %d", opts.TTLDays)
	}
	if opts.TTLDays > cookie.MaxTTLDays {
		return nil, errors.Errorf("cookie ttl must be at most %d days, got %d", cookie.MaxTTLDays, opts.TTLDays)
	}

	e := &Engine{
		cookieName: opts.CookieName,
		ttlDays:    opts.TTLDays,
		attrs:      opts.Attributes,
		registry:   opts.Registry,
		store:      opts.Store,
		controls:   opts.Controls,
		widget:     opts.Widget,
		dispatcher: opts.Dispatcher,
	}
	if e.cookieName == "" {
		e.cookieName = DefaultCookieName
	}
	if e.ttlDays == 0 {
		e.ttlDays = DefaultTTLDays
	}
	if e.widget == nil {
		e.widget = widget.New()
	}
	if e.dispatcher == nil {
		e.dispatcher = event.NewDispatcher()
	}
	return e, nil
}

func (e *Engine) State() State                  { return e.state }
func (e *Engine) HasPriorRecord() bool          { return e.hasPriorRecord }
func (e *Engine) Widget() *widget.Widget        { return e.widget }
func (e *Engine) Dispatcher() *event.Dispatcher { return e.dispatcher }
func (e *Engine) Registry() *registry.Registry  { return e.registry }
func (e *Engine) CookieName() string            { return e.cookieName }

// On subscribes to engine events.
func (e *Engine) On(kind event.Kind, sub event.Subscriber) {
	e.dispatcher.On(kind, sub)
}

// 🚀 Initialize reads the stored record once per engine.
//
// With a record: every registry category gets its control set to the stored
// choice (false when missing from the record), accepted or declined is
// dispatched for it, and the surface is hidden.
// Without one: default-enabled categories are pre-checked, nothing is
// dispatched or written, and the surface stays visible.
func (e *Engine) Initialize(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("cookie", e.cookieName).Logger()

	if e.state != StateUninitialized {
		return ErrAlreadyInitialized
	}

	controls, err := e.resolveControls(ctx)
	if err != nil {
		return err
	}

	// a failing subscriber below still leaves the engine usable
	e.state = StateIdle

	stored, ok := e.storedRecord(ctx)
	if !ok {
		for _, c := range e.registry.Categories() {
			if c.DefaultEnabled {
				controls[c.Handle].SetChecked(true)
			}
		}
		logger.Debug().Int("categories", e.registry.Len()).Msg("booted without a stored record")
		return nil
	}

	e.hasPriorRecord = true
	for _, handle := range e.registry.Handles() {
		granted := stored.Granted(handle)
		controls[handle].SetChecked(granted)
		if err := e.dispatcher.Dispatch(ctx, event.Replay(granted, handle)); err != nil {
			return errors.Errorf("replaying %q: %w", handle, err)
		}
	}
	e.widget.Hide()

	logger.Debug().Int("categories", e.registry.Len()).Msg("booted from stored record")
	return nil
}

// 💾 Save turns the current control states into a new record.
//
// preferences_updated always fires with the full record, then accepted or
// declined fires for each category whose choice differs from the stored one
// (an all-declined baseline when nothing is stored). The record is written
// and the surface hidden only after every subscriber returned cleanly.
func (e *Engine) Save(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("cookie", e.cookieName).Logger()

	switch e.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateSaving:
		return errors.New("save already in progress")
	}

	e.state = StateSaving
	defer func() { e.state = StateIdle }()

	old, ok := e.storedRecord(ctx)
	if !ok {
		old = preference.AllDeclined(e.registry.Handles())
	}

	next, err := e.Decisions(ctx)
	if err != nil {
		return err
	}

	if err := e.dispatcher.Dispatch(ctx, event.PreferencesUpdated(next)); err != nil {
		return errors.Errorf("announcing preferences: %w", err)
	}

	for _, d := range next {
		if old.Granted(d.Handle) == d.Granted {
			continue
		}
		if err := e.dispatcher.Dispatch(ctx, event.Decision(d.Granted, d.Handle)); err != nil {
			return errors.Errorf("announcing %q: %w", d.Handle, err)
		}
	}

	value, err := preference.Encode(next)
	if err != nil {
		return errors.Errorf("encoding preferences: %w", err)
	}
	e.store.Write(e.cookieName, value, e.ttlDays, e.attrs)
	e.hasPriorRecord = true
	e.widget.Hide()

	logger.Debug().Str("value", value).Int("ttl_days", e.ttlDays).Msg("preferences saved")
	return nil
}

// 🔁 Show reopens the surface. Stored state and subscribers are untouched.
func (e *Engine) Show(ctx context.Context) {
	zerolog.Ctx(ctx).Trace().Msg("showing consent widget")
	e.widget.Show()
}

// Decisions reads the current control state for every registry category.
func (e *Engine) Decisions(ctx context.Context) (preference.Record, error) {
	controls, err := e.resolveControls(ctx)
	if err != nil {
		return nil, err
	}
	out := make(preference.Record, 0, e.registry.Len())
	for _, handle := range e.registry.Handles() {
		out = append(out, preference.Decision{Handle: handle, Granted: controls[handle].Checked()})
	}
	return out, nil
}

// StoredRecord returns the decoded stored record, if a valid one exists.
func (e *Engine) StoredRecord(ctx context.Context) (preference.Record, bool) {
	return e.storedRecord(ctx)
}

func (e *Engine) storedRecord(ctx context.Context) (preference.Record, bool) {
	if !e.store.Exists(e.cookieName) {
		return nil, false
	}
	raw, ok := e.store.Read(e.cookieName)
	if !ok {
		return nil, false
	}
	rec, err := preference.Decode(raw)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("cookie", e.cookieName).Msg("ignoring unreadable preference cookie")
		return nil, false
	}
	return rec, true
}

// resolveControls looks up every category's control before any is touched.
func (e *Engine) resolveControls(ctx context.Context) (map[string]widget.Control, error) {
	out := make(map[string]widget.Control, e.registry.Len())
	for _, handle := range e.registry.Handles() {
		c, ok := e.controls.Control(handle)
		if !ok {
			err := errors.WithDetails(ErrMissingControl, "handle", handle)
			zerolog.Ctx(ctx).Error().Err(err).Str("handle", handle).Msg("consent category has no control")
			return nil, err
		}
		out[handle] = c
	}
	return out, nil
}
