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

// Package widget models the consent collection surface: whether it is shown,
// and the per-category toggles a visitor flips on it.
package widget

import "sync"

// 👁️ Visibility of the collection surface
type Visibility int

const (
	Visible Visibility = iota
	Hidden
)

func (v Visibility) String() string {
	if v == Hidden {
		return "hidden"
	}
	return "visible"
}

// 🪟 Widget tracks the show/hide lifecycle. It starts Visible, which is the
// first-visit prompt state. It never touches stored preferences.
type Widget struct {
	mu       sync.Mutex
	state    Visibility
	onChange func(from, to Visibility)
}

// Option configures a Widget.
type Option func(*Widget)

// OnChange registers a hook called on every actual transition.
func OnChange(fn func(from, to Visibility)) Option {
	return func(w *Widget) {
		w.onChange = fn
	}
}

// New returns a visible widget.
func New(opts ...Option) *Widget {
	w := &Widget{state: Visible}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Show makes the surface visible, e.g. when a visitor reopens preferences.
func (w *Widget) Show() {
	w.set(Visible)
}

// Hide makes the surface hidden.
func (w *Widget) Hide() {
	w.set(Hidden)
}

// IsVisible reports whether the surface is shown.
func (w *Widget) IsVisible() bool {
	return w.State() == Visible
}

// State returns the current visibility.
func (w *Widget) State() Visibility {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Widget) set(to Visibility) {
	w.mu.Lock()
	from := w.state
	w.state = to
	hook := w.onChange
	w.mu.Unlock()

	if hook != nil && from != to {
		hook(from, to)
	}
}
