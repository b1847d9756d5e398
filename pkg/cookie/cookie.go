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
	"math"
	"net/http"
	"strings"
	"time"
)

// DayMillis is the length of one cookie expiry day in milliseconds.
const DayMillis = 24 * 60 * 60 * 1000

// MaxTTLDays is the longest lifetime whose expiry still fits in a time.Duration.
const MaxTTLDays = int(math.MaxInt64 / int64(DayMillis*time.Millisecond))

// DefaultPath is the only path preference cookies are written to.
const DefaultPath = "/"

// 🔌 Store is the durable key/value persistence the consent engine writes to.
// Writes are fire-and-forget: a store that refuses a cookie simply leaves
// nothing behind, and the next Exists reports false.
type Store interface {
	// Exists reports whether a cookie with exactly this name is present
	Exists(name string) bool
	// Read returns the raw value, or false when the cookie is absent
	Read(name string) (string, bool)
	// Write sets the cookie to expire ttlDays whole days from now
	Write(name, value string, ttlDays int, attrs Attributes)
}

// 🔧 Attributes are the optional cookie attributes supplied by session config
type Attributes struct {
	Domain   string // Domain attribute, omitted when empty
	Secure   bool   // Emit the secure flag
	SameSite string // SameSite value, omitted when empty
}

// 🍪 Cookie is a single stored cookie with its attributes
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Expires  time.Time `json:"expires"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path"`
	Secure   bool      `json:"secure,omitempty"`
	SameSite string    `json:"same_site,omitempty"`
}

// Expiry returns the expiry for a cookie written at now that lives ttlDays days.
// Lifetimes above MaxTTLDays are capped there.
func Expiry(now time.Time, ttlDays int) time.Time {
	if ttlDays > MaxTTLDays {
		ttlDays = MaxTTLDays
	}
	return now.Add(time.Duration(ttlDays) * DayMillis * time.Millisecond)
}

// Expired reports whether the cookie is no longer visible at now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && !now.Before(c.Expires)
}

// 📝 String renders the cookie in document.cookie assignment form:
//
//	name=value;expires=<GMT date>;domain=<d>;path=/;secure;samesite=<s>
//
// Optional attributes are left out entirely when unset.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if !c.Expires.IsZero() {
		b.WriteString(";expires=")
		b.WriteString(c.Expires.UTC().Format(http.TimeFormat))
	}
	if c.Domain != "" {
		b.WriteString(";domain=")
		b.WriteString(c.Domain)
	}
	path := c.Path
	if path == "" {
		path = DefaultPath
	}
	b.WriteString(";path=")
	b.WriteString(path)
	if c.Secure {
		b.WriteString(";secure")
	}
	if c.SameSite != "" {
		b.WriteString(";samesite=")
		b.WriteString(c.SameSite)
	}
	return b.String()
}

// ParseHeader splits a document.cookie style header ("a=1; b=2") into
// name/value pairs, keeping the first occurrence of each name. names lists
// the kept names in header order.
func ParseHeader(header string) (values map[string]string, names []string) {
	values = map[string]string{}
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := values[name]; seen {
			continue
		}
		values[name] = value
		names = append(names, name)
	}
	return values, names
}
