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
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
)

// NewSaveCmd creates a new save command
func NewSaveCmd(o *opts.RootOpts) *cobra.Command {
	var sel selection

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save consent preferences without the widget",
		Long: `Save changes the consent controls and persists them to the cookie jar.
It will:
1. Initialize from the stored preferences (or the group defaults)
2. Apply --all / --none, then --grant, then --deny
3. Dispatch preferences_updated and one event per changed group
4. Write the preference cookie and flush the jar

Patterns are globs matched against consent group handles:

  cookieconsent save --grant 'analytics*' --deny marketing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sel.empty() {
				return errors.New("nothing to save: pass --all, --none, --grant or --deny")
			}

			ctx := cmd.Context()
			s, err := o.Open(ctx)
			if err != nil {
				return err
			}

			if err := sel.apply(s.Registry.Handles(), s.Controls); err != nil {
				return err
			}
			return s.Save(ctx)
		},
	}

	cmd.Flags().BoolVar(&sel.All, "all", false, "grant every consent group")
	cmd.Flags().BoolVar(&sel.None, "none", false, "decline every consent group")
	cmd.Flags().StringSliceVar(&sel.Grant, "grant", nil, "grant consent groups matching the glob")
	cmd.Flags().StringSliceVar(&sel.Deny, "deny", nil, "decline consent groups matching the glob")
	return cmd
}
