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

// Package scripts holds the third-party snippets gated behind each consent
// category and the loader that releases them once a category is accepted.
package scripts

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Type selects how a gated script is rendered
type Type string

const (
	TypeGoogleTagManager Type = "google-tag-manager"
	TypeMetaPixel        Type = "meta-pixel"
	TypeOther            Type = "other"
)

// Types lists the supported script types.
func Types() []Type {
	return []Type{TypeGoogleTagManager, TypeMetaPixel, TypeOther}
}

// 📜 Script is one gated snippet. Identifiers are used as given.
type Script struct {
	Type             Type   `json:"script_type"`
	GTMContainerID   string `json:"gtm_container_id,omitempty"`
	MetaPixelID      string `json:"meta_pixel_id,omitempty"`
	InlineJavaScript string `json:"inline_javascript,omitempty"`
}

// Validate only checks that the type is known.
func (s Script) Validate() error {
	for _, t := range Types() {
		if s.Type == t {
			return nil
		}
	}
	return errors.Errorf("unknown script_type %q", s.Type)
}

// 📚 Catalog maps consent handles to their gated scripts. It is read-only.
type Catalog struct {
	entries map[string][]Script
}

// 🏭 NewCatalog copies entries, rejecting unknown script types.
func NewCatalog(entries map[string][]Script) (*Catalog, error) {
	c := &Catalog{entries: make(map[string][]Script, len(entries))}
	for handle, list := range entries {
		for i, s := range list {
			if err := s.Validate(); err != nil {
				return nil, errors.Errorf("%s[%d]: %w", handle, i, err)
			}
		}
		if len(list) > 0 {
			c.entries[handle] = append([]Script(nil), list...)
		}
	}
	return c, nil
}

// For returns the scripts gated by handle.
func (c *Catalog) For(handle string) []Script {
	if c == nil {
		return nil
	}
	return append([]Script(nil), c.entries[handle]...)
}

// Handles returns every handle with at least one script, sorted.
func (c *Catalog) Handles() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.entries))
	for h := range c.entries {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Len counts scripts across all handles.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, list := range c.entries {
		n += len(list)
	}
	return n
}
