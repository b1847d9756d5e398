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

package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/config"
	"github.com/walteh/cookieconsent/pkg/cookie"
	"github.com/walteh/cookieconsent/pkg/engine"
	"github.com/walteh/cookieconsent/pkg/event"
	"github.com/walteh/cookieconsent/pkg/jsbridge"
	"github.com/walteh/cookieconsent/pkg/log"
	"github.com/walteh/cookieconsent/pkg/metrics"
	"github.com/walteh/cookieconsent/pkg/registry"
	"github.com/walteh/cookieconsent/pkg/scripts"
	"github.com/walteh/cookieconsent/pkg/widget"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	ConfigFile string
	JarFile    string
	PageFiles  []string
	Debug      bool

	// Console receives event lines. Defaults to stdout.
	Console io.Writer
}

// 🍪 Session is one booted consent surface: config, jar, page and engine
// wired together and initialized.
type Session struct {
	Config   *config.Config
	Registry *registry.Registry
	Catalog  *scripts.Catalog
	Jar      *cookie.FileJar
	Controls widget.ControlMap
	Engine   *engine.Engine
	Page     *jsbridge.Page
	Loader   *scripts.Loader
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Recorder *event.Recorder
	Console  *log.Logger
	User     *UserLogger
}

// 🚀 Open loads the config and jar, runs the page scripts and initializes
// the engine against the stored preferences.
func (o *RootOpts) Open(ctx context.Context) (*Session, error) {
	logger := zerolog.Ctx(ctx)

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	jar, err := cookie.NewFileJar(o.JarFile)
	if err != nil {
		return nil, errors.Errorf("creating cookie jar: %w", err)
	}
	if err := jar.Load(ctx); err != nil {
		return nil, errors.Errorf("loading cookie jar: %w", err)
	}

	s := &Session{
		Config:   cfg,
		Registry: reg,
		Catalog:  catalog,
		Jar:      jar,
		Controls: widget.Checkboxes(reg.Handles()...),
		Recorder: &event.Recorder{},
		User:     NewUserLogger(ctx),
	}

	d := event.NewDispatcher()
	s.Engine, err = engine.New(engine.Options{
		CookieName: cfg.CookieName,
		TTLDays:    cfg.CookieExpiry,
		Attributes: cfg.Attributes(),
		Registry:   reg,
		Store:      jar,
		Controls:   s.Controls,
		Dispatcher: d,
	})
	if err != nil {
		return nil, errors.Errorf("creating engine: %w", err)
	}

	console := o.Console
	if console == nil {
		console = os.Stdout
	}
	s.Console = log.New(console, *logger)
	s.Console.SetNames(s.Names())
	d.OnAll(s.Console)

	promReg := prometheus.NewRegistry()
	s.Metrics = metrics.New(promReg)
	s.Metrics.Attach(d)
	s.Gatherer = promReg

	s.Page = jsbridge.New(d, jsbridge.OnShow(func() { s.Engine.Show(ctx) }))
	s.Loader = scripts.NewLoader(catalog, s.Page)
	s.Loader.Attach(d)

	for _, path := range o.PageFiles {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Errorf("reading page script: %w", err)
		}
		if err := s.Page.Run(ctx, filepath.Base(path), string(src)); err != nil {
			return nil, err
		}
	}

	d.OnAll(s.Recorder)

	if err := s.Engine.Initialize(ctx); err != nil {
		return nil, errors.Errorf("initializing consent engine: %w", err)
	}

	logger.Debug().
		Str("config", cfg.Location()).
		Str("jar", jar.Path()).
		Bool("prior_record", s.Engine.HasPriorRecord()).
		Msg("booted")
	return s, nil
}

// 📤 Save persists the current control state and flushes the jar.
func (s *Session) Save(ctx context.Context) error {
	if err := s.Engine.Save(ctx); err != nil {
		s.User.LogJarChange(JarChange{Type: JarError, Path: s.Jar.Path(), Error: err})
		return errors.Errorf("saving preferences: %w", err)
	}
	if err := s.Jar.Flush(ctx); err != nil {
		s.User.LogJarChange(JarChange{Type: JarError, Path: s.Jar.Path(), Error: err})
		return errors.Errorf("flushing cookie jar: %w", err)
	}
	zerolog.Ctx(ctx).Debug().Strs("events", s.Recorder.Summary()).Msg("dispatched")
	s.User.LogJarChange(JarChange{Type: JarSaved, Path: s.Jar.Path(), Description: s.Config.CookieName})
	return nil
}

// Names maps category handles to display names.
func (s *Session) Names() map[string]string {
	out := make(map[string]string, s.Registry.Len())
	for _, c := range s.Registry.Categories() {
		out[c.Handle] = c.Name
	}
	return out
}
