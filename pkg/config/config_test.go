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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/cookieconsent/pkg/cookie"
	"github.com/walteh/cookieconsent/pkg/scripts"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// the same configuration in every supported format
var fixtures = map[string]string{
	"config.yaml": `
cookie_name: site_consent
cookie_expiry: 30
consent_groups:
  - handle: necessary
    name: Necessary
    enable_by_default: true
  - handle: analytics
    name: Analytics
    description: Usage statistics
session:
  domain: example.com
  secure: true
  same_site: Lax
scripts:
  analytics:
    - script_type: google-tag-manager
      gtm_container_id: GTM-ABC123
    - script_type: other
      inline_javascript: "window.analytics = true;"
`,
	"config.json": `{
  "cookie_name": "site_consent",
  "cookie_expiry": 30,
  "consent_groups": [
    {"handle": "necessary", "name": "Necessary", "enable_by_default": true},
    {"handle": "analytics", "name": "Analytics", "description": "Usage statistics"}
  ],
  "session": {"domain": "example.com", "secure": true, "same_site": "Lax"},
  "scripts": {
    "analytics": [
      {"script_type": "google-tag-manager", "gtm_container_id": "GTM-ABC123"},
      {"script_type": "other", "inline_javascript": "window.analytics = true;"}
    ]
  }
}`,
	"config.toml": `
cookie_name = "site_consent"
cookie_expiry = 30

[session]
domain = "example.com"
secure = true
same_site = "Lax"

[[consent_groups]]
handle = "necessary"
name = "Necessary"
enable_by_default = true

[[consent_groups]]
handle = "analytics"
name = "Analytics"
description = "Usage statistics"

[[scripts.analytics]]
script_type = "google-tag-manager"
gtm_container_id = "GTM-ABC123"

[[scripts.analytics]]
script_type = "other"
inline_javascript = "window.analytics = true;"
`,
	"config.hcl": `
cookie_name   = "site_consent"
cookie_expiry = 30

session {
  domain    = "example.com"
  secure    = true
  same_site = "Lax"
}

consent_group "necessary" {
  name              = "Necessary"
  enable_by_default = true
}

consent_group "analytics" {
  name        = "Analytics"
  description = "Usage statistics"
}

script "analytics" {
  script_type      = "google-tag-manager"
  gtm_container_id = "GTM-ABC123"
}

script "analytics" {
  script_type       = "other"
  inline_javascript = "window.analytics = true;"
}
`,
}

func TestLoadAllFormats(t *testing.T) {
	ctx := setupTestLogger(t)

	for name, body := range fixtures {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))

			cfg, err := Load(ctx, path)
			require.NoError(t, err, "Load should succeed")

			assert.Equal(t, path, cfg.Location())
			assert.Equal(t, "site_consent", cfg.CookieName)
			assert.Equal(t, 30, cfg.CookieExpiry)
			assert.Equal(t, cookie.Attributes{Domain: "example.com", Secure: true, SameSite: "lax"}, cfg.Attributes())

			reg, err := cfg.Registry()
			require.NoError(t, err)
			assert.Equal(t, []string{"necessary", "analytics"}, reg.Handles())
			necessary, _ := reg.ByHandle("necessary")
			assert.True(t, necessary.DefaultEnabled)
			analytics, _ := reg.ByHandle("analytics")
			assert.Equal(t, "Usage statistics", analytics.Description)

			catalog, err := cfg.Catalog()
			require.NoError(t, err)
			assert.Equal(t, []scripts.Script{
				{Type: scripts.TypeGoogleTagManager, GTMContainerID: "GTM-ABC123"},
				{Type: scripts.TypeOther, InlineJavaScript: "window.analytics = true;"},
			}, catalog.For("analytics"))

			assert.Equal(t, "site_consent (2 consent groups, 30 days)", cfg.String())
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "defaults_applied",
			filename: "config.yaml",
			config: `
consent_groups:
  - handle: analytics
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultCookieName, cfg.CookieName)
				assert.Equal(t, DefaultCookieExpiry, cfg.CookieExpiry)
				assert.Equal(t, cookie.Attributes{}, cfg.Attributes())
			},
		},
		{
			name:     "empty_yaml",
			filename: "config.yml",
			config:   "",
			check: func(t *testing.T, cfg *Config) {
				assert.Empty(t, cfg.ConsentGroups)
				assert.Equal(t, DefaultCookieName, cfg.CookieName)
			},
		},
		{
			name:     "script_ids_not_validated",
			filename: "config.json",
			config:   `{"consent_groups":[{"handle":"ads"}],"scripts":{"ads":[{"script_type":"meta-pixel","meta_pixel_id":"not a number"}]}}`,
			check: func(t *testing.T, cfg *Config) {
				catalog, err := cfg.Catalog()
				require.NoError(t, err)
				assert.Equal(t, "not a number", catalog.For("ads")[0].MetaPixelID)
			},
		},
		{
			name:        "unknown_yaml_field",
			filename:    "config.yaml",
			config:      "cookie_nam: typo\n",
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			filename:    "config.json",
			config:      `{"cookie_expiry": 1, "extra": true}`,
			errContains: "parsing JSON",
		},
		{
			name:        "unknown_toml_field",
			filename:    "config.toml",
			config:      "cookie_name = \"x\"\nextra = 1\n",
			errContains: "parsing TOML",
		},
		{
			name:        "unknown_hcl_attribute",
			filename:    "config.hcl",
			config:      "extra = 1\n",
			errContains: "decoding HCL",
		},
		{
			name:        "invalid_hcl_syntax",
			filename:    "config.hcl",
			config:      "consent_group {",
			errContains: "parsing HCL",
		},
		{
			name:        "duplicate_handle",
			filename:    "config.yaml",
			config:      "consent_groups:\n  - handle: a\n  - handle: a\n",
			errContains: "duplicate category handle",
		},
		{
			name:        "empty_handle",
			filename:    "config.yaml",
			config:      "consent_groups:\n  - name: Nameless\n",
			errContains: "category handle is empty",
		},
		{
			name:        "negative_expiry",
			filename:    "config.yaml",
			config:      "cookie_expiry: -1\n",
			errContains: "cookie_expiry must not be negative",
		},
		{
			name:        "expiry_past_max",
			filename:    "config.yaml",
			config:      "cookie_expiry: 200000\n",
			errContains: "cookie_expiry must be at most 106751 days",
		},
		{
			name:        "bad_same_site",
			filename:    "config.yaml",
			config:      "session:\n  same_site: sometimes\n",
			errContains: "session.same_site",
		},
		{
			name:        "bad_cookie_name",
			filename:    "config.yaml",
			config:      "cookie_name: \"a=b\"\n",
			errContains: "cookie_name",
		},
		{
			name:        "scripts_for_unknown_group",
			filename:    "config.yaml",
			config:      "scripts:\n  ghost:\n    - script_type: other\n",
			errContains: `unknown consent group "ghost"`,
		},
		{
			name:        "unknown_script_type",
			filename:    "config.yaml",
			config:      "consent_groups:\n  - handle: a\nscripts:\n  a:\n    - script_type: pixel\n",
			errContains: `unknown script_type "pixel"`,
		},
		{
			name:        "no_parser",
			filename:    "config.txt",
			config:      "",
			errContains: "no parser found",
		},
	}

	ctx := setupTestLogger(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(ctx, tt.filename, []byte(tt.config))
			if tt.errContains != "" {
				require.Error(t, err, "Parse should return error")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}
			require.NoError(t, err, "Parse should succeed")
			assert.Empty(t, cfg.Location())
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	ctx := setupTestLogger(t)
	_, err := Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

// 🧪 TestParserSelection tests parser selection by file extension
func TestParserSelection(t *testing.T) {
	tests := []struct {
		filename string
		want     Parser
	}{
		{filename: "config.yaml", want: &YAMLParser{}},
		{filename: "CONFIG.YML", want: &YAMLParser{}},
		{filename: "config.json", want: &JSONParser{}},
		{filename: "config.hcl", want: &HCLParser{}},
		{filename: "cookie-notice.toml", want: &TOMLParser{}},
		{filename: "config.txt", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got := GetParser(tt.filename)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			assert.IsType(t, tt.want, got)
		})
	}
}

// 🧪 TestParserRegistration tests the parser registration system
func TestParserRegistration(t *testing.T) {
	originalParsers := parsers
	defer func() {
		parsers = originalParsers
	}()

	parsers = nil
	assert.Nil(t, GetParser("config.yaml"))

	Register(&YAMLParser{})
	assert.Len(t, parsers, 1, "should have 1 parser registered")
	assert.IsType(t, &YAMLParser{}, GetParser("config.yaml"))
}
