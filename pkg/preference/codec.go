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

package preference

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrMalformedRecord means a stored cookie value is not a valid record.
// Callers treat it exactly like "no record".
var ErrMalformedRecord = errors.Base("malformed preference record")

// wireDecision keeps both fields as pointers so a missing key can be told
// apart from a zero value.
type wireDecision struct {
	Handle *string `json:"handle"`
	Value  *bool   `json:"value"`
}

// 📦 Encode serializes the record as a JSON array of {handle, value} objects,
// keeping record order.
func Encode(r Record) (string, error) {
	seen := make(map[string]bool, len(r))
	for _, d := range r {
		if seen[d.Handle] {
			return "", errors.Errorf("encoding record: duplicate handle %q", d.Handle)
		}
		seen[d.Handle] = true
	}
	if r == nil {
		r = Record{}
	}
	data, err := json.Marshal(r)
	if err != nil {
		return "", errors.Errorf("encoding record: %w", err)
	}
	return string(data), nil
}

// 🔍 Decode parses a stored cookie value. Anything other than an array of
// objects carrying exactly a non-empty string handle and a boolean value,
// with no handle repeated, fails with ErrMalformedRecord.
//
// Values percent-encoded by server-side cookie writers are accepted.
func Decode(raw string) (Record, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "%") {
		unescaped, err := url.QueryUnescape(text)
		if err != nil {
			return nil, errors.WithDetails(ErrMalformedRecord, "reason", err.Error())
		}
		text = unescaped
	}
	if text == "" {
		return nil, errors.WithDetails(ErrMalformedRecord, "reason", "empty value")
	}

	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.DisallowUnknownFields()

	var wire []wireDecision
	if err := decoder.Decode(&wire); err != nil {
		return nil, errors.WithDetails(ErrMalformedRecord, "reason", err.Error())
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.WithDetails(ErrMalformedRecord, "reason", "trailing data")
	}
	if wire == nil && !strings.HasPrefix(text, "[") {
		return nil, errors.WithDetails(ErrMalformedRecord, "reason", "not an array")
	}

	out := make(Record, 0, len(wire))
	seen := make(map[string]bool, len(wire))
	for i, w := range wire {
		if w.Handle == nil || w.Value == nil {
			return nil, errors.WithDetails(ErrMalformedRecord, "reason", "missing field", "index", i)
		}
		if *w.Handle == "" {
			return nil, errors.WithDetails(ErrMalformedRecord, "reason", "empty handle", "index", i)
		}
		if seen[*w.Handle] {
			return nil, errors.WithDetails(ErrMalformedRecord, "reason", "duplicate handle", "handle", *w.Handle)
		}
		seen[*w.Handle] = true
		out = append(out, Decision{Handle: *w.Handle, Granted: *w.Value})
	}
	return out, nil
}
