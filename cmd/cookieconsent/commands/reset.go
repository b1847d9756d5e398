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

// NewResetCmd creates a new reset command
func NewResetCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored consent preferences",
		Long: `Reset expires the preference cookie so the widget shows again on the
next run. No events are dispatched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := o.Open(ctx)
			if err != nil {
				return err
			}

			if !s.Jar.Exists(s.Config.CookieName) {
				s.User.LogJarChange(opts.JarChange{Type: opts.JarUnchanged, Path: s.Jar.Path(), Description: "no stored preferences"})
				return nil
			}

			s.Jar.Delete(s.Config.CookieName, s.Config.Attributes())
			if err := s.Jar.Flush(ctx); err != nil {
				s.User.LogJarChange(opts.JarChange{Type: opts.JarError, Path: s.Jar.Path(), Error: err})
				return errors.Errorf("flushing cookie jar: %w", err)
			}
			s.User.LogJarChange(opts.JarChange{Type: opts.JarCleared, Path: s.Jar.Path(), Description: s.Config.CookieName})
			return nil
		},
	}
	return cmd
}
