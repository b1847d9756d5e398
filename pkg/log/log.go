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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/cookieconsent/pkg/event"
)

// 🎨 Display configuration
const (
	lineIndent  = 4  // spaces to indent category lines
	handleWidth = 20 // width for the category handle
	nameWidth   = 24 // width for the display name
)

// 🎯 Decision is one category line for console output
type Decision struct {
	Handle  string // Category handle
	Name    string // Display name, may be empty
	Granted bool   // Current choice
	Changed bool   // Whether this run changed it
}

// 🎯 Logger prints consent activity to the console and mirrors it to zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	names   map[string]string
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
		names:   map[string]string{},
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// SetNames gives category handles a display name for event lines.
func (l *Logger) SetNames(names map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range names {
		l.names[k] = v
	}
}

// 📝 formatDecision formats a category line for display
func (l *Logger) formatDecision(d Decision) string {
	symbol, symbolColor, status := '✗', color.FgRed, "declined"
	if d.Granted {
		symbol, symbolColor, status = '✓', color.FgGreen, "granted"
	}
	if d.Changed {
		status += " (changed)"
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", lineIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", handleWidth, d.Handle),
		color.New(color.Faint).Sprint(fmt.Sprintf("%-*s", nameWidth, d.Name)),
		color.New(symbolColor).Sprint(status))
}

// 📝 LogDecision prints one category line
func (l *Logger) LogDecision(ctx context.Context, d Decision) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, l.formatDecision(d))

	l.zlog.Info().
		Str("handle", d.Handle).
		Bool("granted", d.Granted).
		Bool("changed", d.Changed).
		Msg("consent decision")
}

// 📝 Notify prints dispatched events, so a Logger can be subscribed directly
func (l *Logger) Notify(ctx context.Context, ev event.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch ev.Kind {
	case event.KindPreferencesUpdated:
		fmt.Fprintf(l.console, "%s %s %s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint("preferences updated"),
			color.New(color.Faint).Sprint("•"),
			color.New(color.FgYellow).Sprintf("%d categories", len(ev.Record)))
	default:
		fmt.Fprintln(l.console, l.formatDecision(Decision{
			Handle:  ev.Handle,
			Name:    l.names[ev.Handle],
			Granted: ev.Kind == event.KindAccepted,
			Changed: !ev.Replayed,
		}))
	}

	l.zlog.Info().
		Str("event_id", ev.ID.String()).
		Str("kind", string(ev.Kind)).
		Str("handle", ev.Handle).
		Int("decisions", len(ev.Record)).
		Msg("consent event")
	return nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("cookieconsent")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
