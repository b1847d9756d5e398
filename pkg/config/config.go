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
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/cookie"
	"github.com/walteh/cookieconsent/pkg/registry"
	"github.com/walteh/cookieconsent/pkg/scripts"
)

const (
	DefaultCookieName   = "COOKIE_NOTICE_PREFERENCES"
	DefaultCookieExpiry = 14
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🏷️ ConsentGroup is one category offered to visitors
type ConsentGroup struct {
	Handle          string `json:"handle" yaml:"handle" toml:"handle"`
	Name            string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	EnableByDefault bool   `json:"enable_by_default,omitempty" yaml:"enable_by_default,omitempty" toml:"enable_by_default,omitempty"`
}

// 🔒 Session holds the cookie attributes shared with the site session cookie
type Session struct {
	Domain   string `json:"domain,omitempty" yaml:"domain,omitempty" toml:"domain,omitempty"`
	Secure   bool   `json:"secure,omitempty" yaml:"secure,omitempty" toml:"secure,omitempty"`
	SameSite string `json:"same_site,omitempty" yaml:"same_site,omitempty" toml:"same_site,omitempty"`
}

// 📜 Script is one gated snippet as stored in the script catalog. Only the
// field matching ScriptType is read.
type Script struct {
	ScriptType       string `json:"script_type" yaml:"script_type" toml:"script_type"`
	GTMContainerID   string `json:"gtm_container_id,omitempty" yaml:"gtm_container_id,omitempty" toml:"gtm_container_id,omitempty"`
	MetaPixelID      string `json:"meta_pixel_id,omitempty" yaml:"meta_pixel_id,omitempty" toml:"meta_pixel_id,omitempty"`
	InlineJavascript string `json:"inline_javascript,omitempty" yaml:"inline_javascript,omitempty" toml:"inline_javascript,omitempty"`
}

// 📚 Config is everything the consent engine is booted with
type Config struct {
	CookieName    string              `json:"cookie_name,omitempty" yaml:"cookie_name,omitempty" toml:"cookie_name,omitempty"`
	CookieExpiry  int                 `json:"cookie_expiry,omitempty" yaml:"cookie_expiry,omitempty" toml:"cookie_expiry,omitempty"`
	ConsentGroups []ConsentGroup      `json:"consent_groups" yaml:"consent_groups" toml:"consent_groups"`
	Session       Session             `json:"session" yaml:"session" toml:"session"`
	Scripts       map[string][]Script `json:"scripts,omitempty" yaml:"scripts,omitempty" toml:"scripts,omitempty"`

	location string
}

// 🎯 Load reads, parses, defaults and validates the config at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(ctx, path, data)
	if err != nil {
		return nil, err
	}
	cfg.location = path

	logger.Debug().Str("path", path).Int("consent_groups", len(cfg.ConsentGroups)).Msg("configuration loaded")
	return cfg, nil
}

// Parse decodes data with the parser registered for filename.
func Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", filename)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills in the cookie name and expiry and normalizes same_site.
func (cfg *Config) ApplyDefaults() {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.CookieExpiry == 0 {
		cfg.CookieExpiry = DefaultCookieExpiry
	}
	cfg.Session.SameSite = strings.ToLower(strings.TrimSpace(cfg.Session.SameSite))
	cfg.Session.Domain = strings.TrimSpace(cfg.Session.Domain)
}

// 🔍 Validate checks if the configuration is valid. Script identifiers are
// passed through as given.
func (cfg *Config) Validate() error {
	if strings.ContainsAny(cfg.CookieName, "=;, \t\r\n") {
		return errors.Errorf("cookie_name %q contains characters not allowed in a cookie name", cfg.CookieName)
	}
	if cfg.CookieExpiry < 0 {
		return errors.Errorf("cookie_expiry must not be negative, got %d", cfg.CookieExpiry)
	}
	if cfg.CookieExpiry > cookie.MaxTTLDays {
		return errors.Errorf("cookie_expiry must be at most %d days, got %d", cookie.MaxTTLDays, cfg.CookieExpiry)
	}

	switch cfg.Session.SameSite {
	case "", "lax", "strict", "none":
	default:
		return errors.Errorf("session.same_site must be lax, strict or none, got %q", cfg.Session.SameSite)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	for _, handle := range sortedKeys(cfg.Scripts) {
		if _, ok := reg.ByHandle(handle); !ok {
			return errors.Errorf("scripts reference unknown consent group %q", handle)
		}
	}
	if _, err := cfg.Catalog(); err != nil {
		return err
	}

	return nil
}

// Registry builds the consent registry from consent_groups.
func (cfg *Config) Registry() (*registry.Registry, error) {
	cats := make([]registry.Category, 0, len(cfg.ConsentGroups))
	for _, g := range cfg.ConsentGroups {
		cats = append(cats, registry.Category{
			Handle:         g.Handle,
			Name:           g.Name,
			Description:    g.Description,
			DefaultEnabled: g.EnableByDefault,
		})
	}
	reg, err := registry.New(cats...)
	if err != nil {
		return nil, errors.Errorf("consent_groups: %w", err)
	}
	return reg, nil
}

// Attributes returns the cookie attributes from session.
func (cfg *Config) Attributes() cookie.Attributes {
	return cookie.Attributes{
		Domain:   cfg.Session.Domain,
		Secure:   cfg.Session.Secure,
		SameSite: cfg.Session.SameSite,
	}
}

// Catalog builds the gated script catalog.
func (cfg *Config) Catalog() (*scripts.Catalog, error) {
	entries := make(map[string][]scripts.Script, len(cfg.Scripts))
	for handle, list := range cfg.Scripts {
		for _, s := range list {
			entries[handle] = append(entries[handle], scripts.Script{
				Type:             scripts.Type(s.ScriptType),
				GTMContainerID:   s.GTMContainerID,
				MetaPixelID:      s.MetaPixelID,
				InlineJavaScript: s.InlineJavascript,
			})
		}
	}
	catalog, err := scripts.NewCatalog(entries)
	if err != nil {
		return nil, errors.Errorf("scripts: %w", err)
	}
	return catalog, nil
}

// Location is the path the config was loaded from, empty when parsed from bytes.
func (cfg *Config) Location() string {
	return cfg.location
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s (%d consent groups, %d days)", cfg.CookieName, len(cfg.ConsentGroups), cfg.CookieExpiry)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
