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

package widget

import (
	"sort"
	"sync"
)

// ☑️ Control is the toggle for one category on the surface
type Control interface {
	Checked() bool
	SetChecked(checked bool)
}

// 🔍 Controls finds the toggle bound to a category handle
type Controls interface {
	Control(handle string) (Control, bool)
}

// Checkbox is an in-memory Control.
type Checkbox struct {
	mu      sync.Mutex
	checked bool
}

// NewCheckbox returns a checkbox in the given state.
func NewCheckbox(checked bool) *Checkbox {
	return &Checkbox{checked: checked}
}

func (c *Checkbox) Checked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checked
}

func (c *Checkbox) SetChecked(checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = checked
}

// Toggle flips the checkbox and returns the new state.
func (c *Checkbox) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checked = !c.checked
	return c.checked
}

// 🗺️ ControlMap binds handles to controls explicitly
type ControlMap map[string]Control

// Control looks up the control for handle.
func (m ControlMap) Control(handle string) (Control, bool) {
	c, ok := m[handle]
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}

// Handles returns the bound handles, sorted.
func (m ControlMap) Handles() []string {
	out := make([]string, 0, len(m))
	for h := range m {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Checkboxes creates one unchecked Checkbox per handle.
func Checkboxes(handles ...string) ControlMap {
	m := make(ControlMap, len(handles))
	for _, h := range handles {
		m[h] = NewCheckbox(false)
	}
	return m
}
