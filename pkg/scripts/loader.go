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

package scripts

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/event"
)

// 🚰 Sink receives scripts as their category is accepted
type Sink interface {
	Inject(ctx context.Context, script Rendered) error
}

// SinkFunc allows plain functions to satisfy Sink.
type SinkFunc func(ctx context.Context, script Rendered) error

func (fn SinkFunc) Inject(ctx context.Context, script Rendered) error {
	return fn(ctx, script)
}

// WriterSink writes each script element on its own line.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Inject(_ context.Context, script Rendered) error {
	if _, err := fmt.Fprintf(s.W, "<!-- %s: %s -->\n%s\n", script.Handle, script.Type, script.HTML); err != nil {
		return errors.Errorf("writing script: %w", err)
	}
	return nil
}

// 🚚 Loader releases a category's scripts the first time it is accepted.
// Scripts already on the page stay there when the category is later
// declined; removing them takes a page reload. A failed injection is
// retried from the failing script on the next accepted event.
type Loader struct {
	mu       sync.Mutex
	catalog  *Catalog
	sink     Sink
	loaded   map[string]bool
	injected map[string]int // scripts already injected per handle
}

// NewLoader creates a loader over catalog.
func NewLoader(catalog *Catalog, sink Sink) *Loader {
	return &Loader{
		catalog: catalog,
		sink:    sink,
		loaded:   make(map[string]bool),
		injected: make(map[string]int),
	}
}

// Attach subscribes the loader to accepted and declined events.
func (l *Loader) Attach(d *event.Dispatcher) {
	d.On(event.KindAccepted, l)
	d.On(event.KindDeclined, l)
}

// Notify implements event.Subscriber.
func (l *Loader) Notify(ctx context.Context, ev event.Event) error {
	logger := zerolog.Ctx(ctx).With().Str("handle", ev.Handle).Logger()

	switch ev.Kind {
	case event.KindAccepted:
	case event.KindDeclined:
		if l.isLoaded(ev.Handle) {
			logger.Debug().Msg("category declined after its scripts loaded; they stay until reload")
		}
		return nil
	default:
		return nil
	}

	l.mu.Lock()
	if l.loaded[ev.Handle] {
		l.mu.Unlock()
		return nil
	}
	start := l.injected[ev.Handle]
	l.mu.Unlock()

	list := l.catalog.For(ev.Handle)
	for i := start; i < len(list); i++ {
		s := list[i]
		rendered, err := Render(ev.Handle, s)
		if err != nil {
			return err
		}
		if err := l.sink.Inject(ctx, rendered); err != nil {
			return errors.Errorf("injecting %s script for %q: %w", s.Type, ev.Handle, err)
		}
		l.mu.Lock()
		l.injected[ev.Handle] = i + 1
		l.mu.Unlock()
	}

	l.mu.Lock()
	l.loaded[ev.Handle] = true
	l.mu.Unlock()

	logger.Debug().Int("scripts", len(list)-start).Msg("released gated scripts")
	return nil
}

// Loaded returns the handles whose scripts were released, sorted.
func (l *Loader) Loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.loaded))
	for h := range l.loaded {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (l *Loader) isLoaded(handle string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[handle]
}
