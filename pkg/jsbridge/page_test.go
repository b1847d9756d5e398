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

package jsbridge

import (
	"context"
	"testing"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/event"
	"github.com/walteh/cookieconsent/pkg/preference"
	"github.com/walteh/cookieconsent/pkg/scripts"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

const listeners = `
window.CookieNotice.on('accepted', (handle) => console.log('accepted', handle))
window.CookieNotice.on('declined', (handle) => console.log('declined', handle))
CookieNotice.on('preferences_updated', (prefs) => {
	console.log('updated', prefs.map((p) => p.handle + '=' + p.value).join(','))
})
`

func TestPageListeners(t *testing.T) {
	ctx := setupTestLogger(t)
	d := event.NewDispatcher()
	page := New(d)

	require.NoError(t, page.Run(ctx, "listeners.js", listeners))
	assert.Equal(t, 1, d.Count(event.KindAccepted))

	require.NoError(t, d.Dispatch(ctx, event.PreferencesUpdated(preference.Record{
		{Handle: "analytics", Granted: true},
		{Handle: "marketing"},
	})))
	require.NoError(t, d.Dispatch(ctx, event.Accepted("analytics")))
	require.NoError(t, d.Dispatch(ctx, event.Declined("marketing")))

	assert.Equal(t, []string{
		"updated analytics=true,marketing=false",
		"accepted analytics",
		"declined marketing",
	}, page.Console())
}

func TestPageListenerThrows(t *testing.T) {
	ctx := setupTestLogger(t)
	d := event.NewDispatcher()
	page := New(d)

	require.NoError(t, page.Run(ctx, "broken.js", `
CookieNotice.on('accepted', () => { throw new Error('gtag is not defined') })
CookieNotice.on('accepted', () => console.log('never reached'))
`))

	err := d.Dispatch(ctx, event.Accepted("analytics"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gtag is not defined")

	var exc *goja.Exception
	assert.True(t, errors.As(err, &exc))
	assert.Empty(t, page.Console())
}

func TestPageRunErrors(t *testing.T) {
	ctx := setupTestLogger(t)

	tests := []struct {
		name        string
		src         string
		errContains string
	}{
		{name: "syntax_error", src: "CookieNotice.on(", errContains: "compiling page.js"},
		{name: "unknown_event", src: "CookieNotice.on('accept', () => {})", errContains: `unknown event "accept"`},
		{name: "listener_not_function", src: "CookieNotice.on('accepted', 42)", errContains: "is not a function"},
		{name: "runtime_error", src: "undefinedFunction()", errContains: "running page.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := New(event.NewDispatcher())
			err := page.Run(ctx, "page.js", tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestPageShowWidget(t *testing.T) {
	ctx := setupTestLogger(t)
	shown := 0
	page := New(event.NewDispatcher(), OnShow(func() { shown++ }))

	require.NoError(t, page.Run(ctx, "reopen.js", "CookieNotice.showWidget()"))
	assert.Equal(t, 1, shown)
}

func TestPageInject(t *testing.T) {
	ctx := setupTestLogger(t)
	page := New(event.NewDispatcher())

	inline, err := scripts.Render("analytics", scripts.Script{Type: scripts.TypeOther, InlineJavaScript: "window.tracking = 'on'"})
	require.NoError(t, err)
	gtm, err := scripts.Render("analytics", scripts.Script{Type: scripts.TypeGoogleTagManager, GTMContainerID: "GTM-1"})
	require.NoError(t, err)

	require.NoError(t, page.Inject(ctx, gtm))
	assert.Nil(t, page.Global("dataLayer"), "tag manager snippets are recorded, not executed")

	require.NoError(t, page.Inject(ctx, inline))
	assert.Equal(t, "on", page.Global("tracking"))
	assert.Len(t, page.Injected(), 2)
}

func TestPageWithLoader(t *testing.T) {
	ctx := setupTestLogger(t)
	d := event.NewDispatcher()
	page := New(d)

	catalog, err := scripts.NewCatalog(map[string][]scripts.Script{
		"analytics": {{Type: scripts.TypeOther, InlineJavaScript: "console.log('analytics loaded')"}},
	})
	require.NoError(t, err)
	scripts.NewLoader(catalog, page).Attach(d)

	require.NoError(t, d.Dispatch(ctx, event.Accepted("analytics")))
	require.NoError(t, d.Dispatch(ctx, event.Accepted("analytics")))

	assert.Equal(t, []string{"analytics loaded"}, page.Console())
}
