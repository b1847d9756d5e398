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

// Package registry is the read-only catalog of consent categories a site
// offers. It is built once from configuration and never changes afterwards.
package registry

import (
	"gitlab.com/tozd/go/errors"
)

var (
	ErrEmptyHandle     = errors.Base("category handle is empty")
	ErrDuplicateHandle = errors.Base("duplicate category handle")
)

// 🏷️ Category is one consent group a visitor can accept or decline
type Category struct {
	Handle         string `json:"handle" yaml:"handle"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultEnabled bool   `json:"enable_by_default" yaml:"enable_by_default"`
}

// 📚 Registry holds categories in configured order
type Registry struct {
	categories []Category
	index      map[string]int
}

// 🏭 New builds a registry, rejecting empty or repeated handles.
func New(categories ...Category) (*Registry, error) {
	r := &Registry{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		if c.Handle == "" {
			return nil, errors.WithDetails(ErrEmptyHandle, "position", i)
		}
		if _, ok := r.index[c.Handle]; ok {
			return nil, errors.WithDetails(ErrDuplicateHandle, "handle", c.Handle)
		}
		r.index[c.Handle] = len(r.categories)
		r.categories = append(r.categories, c)
	}
	return r, nil
}

// MustNew is New for fixed category lists; it panics on error.
func MustNew(categories ...Category) *Registry {
	r, err := New(categories...)
	if err != nil {
		panic(err)
	}
	return r
}

// Categories returns a copy of the categories in configured order.
func (r *Registry) Categories() []Category {
	return append([]Category(nil), r.categories...)
}

// ByHandle looks up a category.
func (r *Registry) ByHandle(handle string) (Category, bool) {
	i, ok := r.index[handle]
	if !ok {
		return Category{}, false
	}
	return r.categories[i], true
}

// Handles returns the category handles in configured order.
func (r *Registry) Handles() []string {
	out := make([]string, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c.Handle)
	}
	return out
}

// Len is the number of categories.
func (r *Registry) Len() int {
	return len(r.categories)
}
