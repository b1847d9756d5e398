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
	"github.com/walteh/cookieconsent/pkg/scripts"
)

// NewScriptsCmd creates a new scripts command
func NewScriptsCmd(o *opts.RootOpts) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Print the scripts released by the stored preferences",
		Long: `Scripts prints the script elements a page would receive for the stored
preferences. With --all every configured script is printed regardless of consent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sink := scripts.WriterSink{W: cmd.OutOrStdout()}

			s, err := o.Open(ctx)
			if err != nil {
				return err
			}

			if all {
				for _, handle := range s.Catalog.Handles() {
					for _, script := range s.Catalog.For(handle) {
						rendered, err := scripts.Render(handle, script)
						if err != nil {
							return errors.Errorf("rendering %s script: %w", handle, err)
						}
						if err := sink.Inject(ctx, rendered); err != nil {
							return err
						}
					}
				}
				return nil
			}

			injected := s.Page.Injected()
			for _, rendered := range injected {
				if err := sink.Inject(ctx, rendered); err != nil {
					return err
				}
			}
			if len(injected) == 0 {
				s.User.LogStateChange("No scripts released by the stored preferences")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "print every configured script")
	return cmd
}
