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

package cookie

import (
	"strings"
	"sync"
	"time"
)

// 🫙 Jar is an in-memory, document-level cookie jar. It behaves like
// document.cookie: expired cookies are invisible and a write with an expiry
// in the past removes the cookie.
type Jar struct {
	mu         sync.RWMutex
	now        func() time.Time
	cookies    map[string]Cookie
	order      []string
	setCookies []string
}

// JarOption configures a Jar.
type JarOption func(*Jar)

// WithClock replaces time.Now as the jar's clock.
func WithClock(now func() time.Time) JarOption {
	return func(j *Jar) {
		if now != nil {
			j.now = now
		}
	}
}

// 🏭 NewJar creates an empty jar
func NewJar(opts ...JarOption) *Jar {
	j := &Jar{
		now:     time.Now,
		cookies: make(map[string]Cookie),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var _ Store = (*Jar)(nil)

func (j *Jar) Exists(name string) bool {
	_, ok := j.Read(name)
	return ok
}

func (j *Jar) Read(name string) (string, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	c, ok := j.cookies[name]
	if !ok || c.Expired(j.now()) {
		return "", false
	}
	return c.Value, true
}

func (j *Jar) Write(name, value string, ttlDays int, attrs Attributes) {
	j.Set(Cookie{
		Name:     name,
		Value:    value,
		Expires:  Expiry(j.now(), ttlDays),
		Domain:   attrs.Domain,
		Path:     DefaultPath,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	})
}

// Set stores a fully specified cookie and records its assignment line.
func (j *Jar) Set(c Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if c.Path == "" {
		c.Path = DefaultPath
	}
	j.setCookies = append(j.setCookies, c.String())

	if c.Expired(j.now()) {
		j.remove(c.Name)
		return
	}
	if _, ok := j.cookies[c.Name]; !ok {
		j.order = append(j.order, c.Name)
	}
	j.cookies[c.Name] = c
}

// Delete expires the named cookie.
func (j *Jar) Delete(name string, attrs Attributes) {
	j.Set(Cookie{
		Name:     name,
		Expires:  time.Unix(0, 0).UTC(),
		Domain:   attrs.Domain,
		Path:     DefaultPath,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	})
}

// Seed loads cookies from a document.cookie style header. Seeded cookies
// carry no expiry and are not reported by SetCookies.
func (j *Jar) Seed(header string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	values, names := ParseHeader(header)
	for _, name := range names {
		value := values[name]
		if _, ok := j.cookies[name]; !ok {
			j.order = append(j.order, name)
		}
		j.cookies[name] = Cookie{Name: name, Value: value, Path: DefaultPath}
	}
}

// Header renders the visible cookies the way document.cookie does.
func (j *Jar) Header() string {
	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now()
	parts := make([]string, 0, len(j.order))
	for _, name := range j.order {
		c := j.cookies[name]
		if c.Expired(now) {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Cookies returns the visible cookies in insertion order.
func (j *Jar) Cookies() []Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()

	now := j.now()
	out := make([]Cookie, 0, len(j.order))
	for _, name := range j.order {
		if c := j.cookies[name]; !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// SetCookies returns every assignment line written so far, oldest first.
func (j *Jar) SetCookies() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]string(nil), j.setCookies...)
}

func (j *Jar) remove(name string) {
	if _, ok := j.cookies[name]; !ok {
		return
	}
	delete(j.cookies, name)
	for i, n := range j.order {
		if n == name {
			j.order = append(j.order[:i], j.order[i+1:]...)
			break
		}
	}
}
