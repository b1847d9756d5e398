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

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
	"github.com/walteh/cookieconsent/pkg/cookie"
	"github.com/walteh/cookieconsent/pkg/preference"
)

const testConfig = `
cookie_name: COOKIE_NOTICE_PREFERENCES
cookie_expiry: 30
consent_groups:
  - handle: necessary
    name: Necessary
    enable_by_default: true
  - handle: analytics
    name: Analytics
  - handle: marketing
    name: Marketing
session:
  domain: example.com
  same_site: Lax
scripts:
  analytics:
    - script_type: other
      inline_javascript: "console.log('analytics loaded')"
    - script_type: google-tag-manager
      gtm_container_id: GTM-TEST
`

type testEnv struct {
	dir    string
	config string
	jar    string
}

func setupEnv(t *testing.T) testEnv {
	dir := t.TempDir()
	env := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "cookie-notice.yaml"),
		jar:    filepath.Join(dir, "jar.json"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte(testConfig), 0o644))
	return env
}

// run executes one CLI invocation and returns what it wrote to stdout.
// Flags in args override the environment defaults.
func (env testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}

	cmd := newRootCmd(&opts.RootOpts{}, io.Discard)
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", env.config, "--jar", env.jar}, args...))

	logger := zerolog.New(zerolog.TestWriter{T: t})
	err := cmd.ExecuteContext(logger.WithContext(context.Background()))
	return out.String(), err
}

func (env testEnv) stored(t *testing.T) (preference.Record, bool) {
	t.Helper()
	jar, err := cookie.NewFileJar(env.jar)
	require.NoError(t, err)
	require.NoError(t, jar.Load(context.Background()))

	raw, ok := jar.Read("COOKIE_NOTICE_PREFERENCES")
	if !ok {
		return nil, false
	}
	rec, err := preference.Decode(raw)
	require.NoError(t, err)
	return rec, true
}

func TestSaveStatusReset(t *testing.T) {
	env := setupEnv(t)

	_, ok := env.stored(t)
	require.False(t, ok, "fresh jar has no preferences")

	out, err := env.run(t, "save", "--grant", "analytics")
	require.NoError(t, err)
	assert.Contains(t, out, "preferences updated")
	assert.Contains(t, out, "3 categories")

	rec, ok := env.stored(t)
	require.True(t, ok)
	assert.Equal(t, preference.Record{
		{Handle: "necessary", Granted: true},
		{Handle: "analytics", Granted: true},
		{Handle: "marketing", Granted: false},
	}, rec)

	out, err = env.run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "consent status")
	assert.Contains(t, out, "cookie: COOKIE_NOTICE_PREFERENCES=")
	assert.Contains(t, out, ";domain=example.com;path=/;samesite=lax")

	out, err = env.run(t, "status", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, `cookieconsent_decisions_total{handle="analytics",kind="accepted"} 1`)
	assert.Contains(t, out, `cookieconsent_decisions_total{handle="marketing",kind="declined"} 1`)

	_, err = env.run(t, "save", "--deny", "analytics")
	require.NoError(t, err)
	rec, ok = env.stored(t)
	require.True(t, ok)
	assert.False(t, rec.Granted("analytics"))
	assert.True(t, rec.Granted("necessary"), "untouched groups keep the stored choice")

	_, err = env.run(t, "reset")
	require.NoError(t, err)
	_, ok = env.stored(t)
	assert.False(t, ok)
}

func TestScripts(t *testing.T) {
	env := setupEnv(t)

	out, err := env.run(t, "scripts")
	require.NoError(t, err)
	assert.NotContains(t, out, "<!-- analytics")

	out, err = env.run(t, "scripts", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "<!-- analytics: other -->")
	assert.Contains(t, out, "<!-- analytics: google-tag-manager -->")
	assert.Contains(t, out, "GTM-TEST")

	_, err = env.run(t, "save", "--all")
	require.NoError(t, err)

	out, err = env.run(t, "scripts")
	require.NoError(t, err)
	assert.Contains(t, out, "<!-- analytics: other -->")
	assert.Contains(t, out, "console.log('analytics loaded')")
	assert.Contains(t, out, "<!-- analytics: google-tag-manager -->")
}

func TestPageScripts(t *testing.T) {
	env := setupEnv(t)

	page := filepath.Join(env.dir, "page.js")
	require.NoError(t, os.WriteFile(page, []byte(`
CookieNotice.on('accepted', (handle) => console.log('accepted', handle))
`), 0o644))
	_, err := env.run(t, "save", "--all", "--page", page)
	require.NoError(t, err)

	broken := filepath.Join(env.dir, "broken.js")
	require.NoError(t, os.WriteFile(broken, []byte(`CookieNotice.on(`), 0o644))
	_, err = env.run(t, "status", "--page", broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling broken.js")

	throws := filepath.Join(env.dir, "throws.js")
	require.NoError(t, os.WriteFile(throws, []byte(`
CookieNotice.on('accepted', () => { throw new Error('gtag is not defined') })
`), 0o644))
	_, err = env.run(t, "status", "--page", throws)
	require.Error(t, err, "replaying stored preferences reaches the throwing listener")
	assert.Contains(t, err.Error(), "gtag is not defined")
}

func TestCommandErrors(t *testing.T) {
	env := setupEnv(t)

	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "save_without_selection", args: []string{"save"}, errContains: "nothing to save"},
		{name: "save_unknown_group", args: []string{"save", "--grant", "social"}, errContains: `pattern "social" matches no consent group`},
		{name: "missing_config", args: []string{"status", "--config", filepath.Join(env.dir, "nope.yaml")}, errContains: "loading config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidate(t *testing.T) {
	env := setupEnv(t)

	_, err := env.run(t, "validate")
	require.NoError(t, err)

	bad := filepath.Join(env.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("consent_groups:\n  - handle: a\n  - handle: a\n"), 0o644))
	_, err = env.run(t, "validate", env.config, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 config files are invalid")
}

func TestVersion(t *testing.T) {
	env := setupEnv(t)

	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cookieconsent version info")

	out, err = env.run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
}
