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

package commands

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/pkg/widget"
)

// 🎯 selection is what the save flags ask for. Grant patterns are applied
// before deny patterns, so a handle matched by both ends up declined.
type selection struct {
	All   bool
	None  bool
	Grant []string
	Deny  []string
}

func (s selection) empty() bool {
	return !s.All && !s.None && len(s.Grant) == 0 && len(s.Deny) == 0
}

// apply sets the controls for handles. Every pattern must match at least
// one handle.
func (s selection) apply(handles []string, controls widget.Controls) error {
	if s.All && s.None {
		return errors.New("--all and --none are mutually exclusive")
	}

	set := func(handle string, checked bool) error {
		c, ok := controls.Control(handle)
		if !ok {
			return errors.Errorf("no control for consent group %q", handle)
		}
		c.SetChecked(checked)
		return nil
	}

	if s.All || s.None {
		for _, h := range handles {
			if err := set(h, s.All); err != nil {
				return err
			}
		}
	}

	for _, group := range []struct {
		patterns []string
		checked  bool
	}{
		{s.Grant, true},
		{s.Deny, false},
	} {
		for _, pattern := range group.patterns {
			matched, err := matchHandles(pattern, handles)
			if err != nil {
				return err
			}
			for _, h := range matched {
				if err := set(h, group.checked); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// matchHandles returns the handles matched by a glob pattern.
func matchHandles(pattern string, handles []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid pattern %q", pattern)
	}
	var out []string
	for _, h := range handles {
		ok, err := doublestar.Match(pattern, h)
		if err != nil {
			return nil, errors.Errorf("matching pattern %q: %w", pattern, err)
		}
		if ok {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, errors.Errorf("pattern %q matches no consent group", pattern)
	}
	return out, nil
}
