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

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		input   []Category
		wantErr error
	}{
		{
			name:  "ordered_categories",
			input: []Category{{Handle: "necessary", DefaultEnabled: true}, {Handle: "analytics"}},
		},
		{
			name: "empty_registry",
		},
		{
			name:    "empty_handle",
			input:   []Category{{Handle: "necessary"}, {Handle: ""}},
			wantErr: ErrEmptyHandle,
		},
		{
			name:    "duplicate_handle",
			input:   []Category{{Handle: "analytics"}, {Handle: "analytics", DefaultEnabled: true}},
			wantErr: ErrDuplicateHandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.input...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.input), r.Len())
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	r := MustNew(
		Category{Handle: "necessary", Name: "Necessary", DefaultEnabled: true},
		Category{Handle: "analytics", Name: "Analytics"},
		Category{Handle: "marketing"},
	)

	t.Run("handles_keep_order", func(t *testing.T) {
		assert.Equal(t, []string{"necessary", "analytics", "marketing"}, r.Handles())
	})

	t.Run("by_handle", func(t *testing.T) {
		c, ok := r.ByHandle("analytics")
		require.True(t, ok)
		assert.Equal(t, "Analytics", c.Name)
		assert.False(t, c.DefaultEnabled)

		_, ok = r.ByHandle("unknown")
		assert.False(t, ok)
	})

	t.Run("categories_is_a_copy", func(t *testing.T) {
		cats := r.Categories()
		cats[0].Handle = "changed"
		assert.Equal(t, "necessary", r.Categories()[0].Handle)
	})

	t.Run("must_new_panics", func(t *testing.T) {
		assert.Panics(t, func() { MustNew(Category{}) })
	})
}
