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

// Package jsbridge runs page JavaScript against the consent engine. Page code
// subscribes with window.CookieNotice.on(kind, fn) exactly as it would in a
// browser, and inline scripts released by the script loader execute here.
package jsbridge

import (
	"context"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/event"
	"github.com/walteh/cookieconsent/pkg/scripts"
)

// 🌐 Page is a single goja runtime standing in for a browser page
type Page struct {
	mu         sync.Mutex
	vm         *goja.Runtime
	dispatcher *event.Dispatcher
	onShow     func()
	console    []string
	injected   []scripts.Rendered
}

// Option configures a Page.
type Option func(*Page)

// OnShow is called when page code invokes CookieNotice.showWidget().
func OnShow(fn func()) Option {
	return func(p *Page) {
		p.onShow = fn
	}
}

// 🏭 New creates a page whose CookieNotice.on registers with d.
func New(d *event.Dispatcher, opts ...Option) *Page {
	p := &Page{
		vm:         goja.New(),
		dispatcher: d,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.install()
	return p
}

var _ scripts.Sink = (*Page)(nil)

func (p *Page) install() {
	vm := p.vm

	notice := vm.NewObject()
	_ = notice.Set("on", p.jsOn)
	_ = notice.Set("showWidget", func(goja.FunctionCall) goja.Value {
		if p.onShow != nil {
			p.onShow()
		}
		return goja.Undefined()
	})

	console := vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		p.console = append(p.console, strings.Join(parts, " "))
		return goja.Undefined()
	})

	vm.Set("CookieNotice", notice)
	vm.Set("console", console)
	vm.Set("window", vm.GlobalObject())
}

func (p *Page) jsOn(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	kind, ok := event.ParseKind(name)
	if !ok {
		panic(p.vm.NewTypeError("CookieNotice.on: unknown event %q", name))
	}
	fn, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		panic(p.vm.NewTypeError("CookieNotice.on: listener for %q is not a function", name))
	}

	p.dispatcher.On(kind, event.SubscriberFunc(func(ctx context.Context, ev event.Event) error {
		p.mu.Lock()
		defer p.mu.Unlock()

		if _, err := fn(goja.Undefined(), p.payload(ev)); err != nil {
			return errors.Errorf("page listener for %s: %w", ev.Kind, err)
		}
		return nil
	}))
	return goja.Undefined()
}

// payload is a handle string for accepted/declined and an array of
// {handle, value} objects for preferences_updated.
func (p *Page) payload(ev event.Event) goja.Value {
	if ev.Kind != event.KindPreferencesUpdated {
		return p.vm.ToValue(ev.Handle)
	}
	out := make([]any, 0, len(ev.Record))
	for _, d := range ev.Record {
		out = append(out, map[string]any{"handle": d.Handle, "value": d.Granted})
	}
	return p.vm.ToValue(out)
}

// Run executes page source, typically the code that registers listeners.
func (p *Page) Run(ctx context.Context, name, src string) error {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return errors.Errorf("compiling %s: %w", name, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := p.vm.RunProgram(program); err != nil {
		return errors.Errorf("running %s: %w", name, err)
	}
	zerolog.Ctx(ctx).Debug().Str("script", name).Msg("page script executed")
	return nil
}

// Inject implements scripts.Sink. Inline scripts run in the page; tag
// manager and pixel snippets are only recorded since they need the network.
func (p *Page) Inject(ctx context.Context, script scripts.Rendered) error {
	p.mu.Lock()
	p.injected = append(p.injected, script)
	p.mu.Unlock()

	if script.Type != scripts.TypeOther || script.JavaScript == "" {
		return nil
	}
	return p.Run(ctx, "inline:"+script.Handle, script.JavaScript)
}

// Console returns every console.log line so far.
func (p *Page) Console() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.console...)
}

// Injected returns every script handed to Inject.
func (p *Page) Injected() []scripts.Rendered {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]scripts.Rendered(nil), p.injected...)
}

// Global reads a global variable, exported to Go.
func (p *Page) Global(name string) any {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.vm.Get(name)
	if v == nil {
		return nil
	}
	return v.Export()
}
