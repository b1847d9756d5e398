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
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestEncode(t *testing.T) {
	t.Run("keeps_order", func(t *testing.T) {
		got, err := Encode(Record{
			{Handle: "necessary", Granted: true},
			{Handle: "analytics", Granted: false},
		})
		require.NoError(t, err)
		assert.Equal(t, `[{"handle":"necessary","value":true},{"handle":"analytics","value":false}]`, got)
	})

	t.Run("empty_record_is_empty_array", func(t *testing.T) {
		got, err := Encode(nil)
		require.NoError(t, err)
		assert.Equal(t, "[]", got)
	})

	t.Run("duplicate_handle_rejected", func(t *testing.T) {
		_, err := Encode(Record{{Handle: "a"}, {Handle: "a", Granted: true}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate handle")
	})
}

func TestDecodeRoundTrip(t *testing.T) {
	records := []Record{
		{},
		{{Handle: "analytics", Granted: true}},
		{{Handle: "necessary", Granted: true}, {Handle: "analytics"}, {Handle: "marketing", Granted: true}},
		{{Handle: "with space", Granted: true}, {Handle: "ünïcode"}},
	}

	for _, r := range records {
		raw, err := Encode(r)
		require.NoError(t, err)
		got, err := Decode(raw)
		require.NoError(t, err, "decoding %s", raw)
		assert.True(t, r.Equal(got), "round trip of %s", raw)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      Record
		malformed bool
	}{
		{
			name: "original_cookie_shape",
			raw:  `[{"handle":"analytics","value":true}]`,
			want: Record{{Handle: "analytics", Granted: true}},
		},
		{
			name: "surrounding_whitespace",
			raw:  "  [{\"handle\":\"a\",\"value\":false}]\n",
			want: Record{{Handle: "a"}},
		},
		{
			name: "percent_encoded",
			raw:  url.QueryEscape(`[{"handle":"analytics","value":true}]`),
			want: Record{{Handle: "analytics", Granted: true}},
		},
		{name: "empty", raw: "", malformed: true},
		{name: "not_json", raw: "yes please", malformed: true},
		{name: "null", raw: "null", malformed: true},
		{name: "object", raw: `{"handle":"a","value":true}`, malformed: true},
		{name: "missing_value", raw: `[{"handle":"a"}]`, malformed: true},
		{name: "missing_handle", raw: `[{"value":true}]`, malformed: true},
		{name: "empty_handle", raw: `[{"handle":"","value":true}]`, malformed: true},
		{name: "string_value", raw: `[{"handle":"a","value":"true"}]`, malformed: true},
		{name: "unknown_field", raw: `[{"handle":"a","value":true,"extra":1}]`, malformed: true},
		{name: "duplicate_handle", raw: `[{"handle":"a","value":true},{"handle":"a","value":false}]`, malformed: true},
		{name: "trailing_data", raw: `[{"handle":"a","value":true}] []`, malformed: true},
		{name: "bad_escape", raw: "%zz", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.raw)
			if tt.malformed {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedRecord), "want ErrMalformedRecord, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord(t *testing.T) {
	r := Record{{Handle: "necessary", Granted: true}, {Handle: "analytics"}}

	t.Run("granted_defaults_to_false", func(t *testing.T) {
		assert.True(t, r.Granted("necessary"))
		assert.False(t, r.Granted("analytics"))
		assert.False(t, r.Granted("marketing"))
	})

	t.Run("lookup", func(t *testing.T) {
		d, ok := r.Lookup("analytics")
		require.True(t, ok)
		assert.Equal(t, Decision{Handle: "analytics"}, d)
		_, ok = r.Lookup("marketing")
		assert.False(t, ok)
	})

	t.Run("clone_is_independent", func(t *testing.T) {
		c := r.Clone()
		c[0].Granted = false
		assert.True(t, r[0].Granted)
	})

	t.Run("all_declined", func(t *testing.T) {
		got := AllDeclined([]string{"a", "b"})
		assert.Equal(t, Record{{Handle: "a"}, {Handle: "b"}}, got)
		assert.Equal(t, []string{"a", "b"}, got.Handles())
	})
}
