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

// Package preference holds the per-category consent decisions a visitor has
// saved and the codec that moves them in and out of the preference cookie.
package preference

// ✅ Decision is one visitor choice for one consent category
type Decision struct {
	Handle  string `json:"handle"`
	Granted bool   `json:"value"`
}

// 📚 Record is the ordered set of decisions written on save, one per
// category known at that time. A handle missing from the record reads as
// not granted.
type Record []Decision

// Lookup returns the decision stored for handle.
func (r Record) Lookup(handle string) (Decision, bool) {
	for _, d := range r {
		if d.Handle == handle {
			return d, true
		}
	}
	return Decision{}, false
}

// Granted reports the stored choice for handle, false when absent.
func (r Record) Granted(handle string) bool {
	d, ok := r.Lookup(handle)
	return ok && d.Granted
}

// Handles returns the handles in record order.
func (r Record) Handles() []string {
	out := make([]string, 0, len(r))
	for _, d := range r {
		out = append(out, d.Handle)
	}
	return out
}

// Equal reports whether both records hold the same decisions in the same order.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that shares no backing array with r.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return append(Record(nil), r...)
}

// AllDeclined is the baseline used when no record has been saved yet.
func AllDeclined(handles []string) Record {
	out := make(Record, 0, len(handles))
	for _, h := range handles {
		out = append(out, Decision{Handle: h})
	}
	return out
}
