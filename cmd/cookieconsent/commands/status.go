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
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
	"github.com/walteh/cookieconsent/pkg/log"
	"github.com/walteh/cookieconsent/pkg/metrics"
)

// NewStatusCmd creates a new status command
func NewStatusCmd(o *opts.RootOpts) *cobra.Command {
	var showMetrics bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored consent preferences",
		Long: `Status initializes the consent engine from the cookie jar and reports:
1. The decision for every consent group
2. Whether the widget would be shown
3. The preference cookie as it would be sent to the browser`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			s, err := o.Open(ctx)
			if err != nil {
				return err
			}

			decisions, err := s.Engine.Decisions(ctx)
			if err != nil {
				return errors.Errorf("reading decisions: %w", err)
			}

			s.Console.Header("consent status")
			names := s.Names()
			for _, d := range decisions {
				s.Console.LogDecision(ctx, log.Decision{
					Handle:  d.Handle,
					Name:    names[d.Handle],
					Granted: d.Granted,
				})
			}
			s.Console.LogNewline()

			if stored, ok := s.Engine.StoredRecord(ctx); ok {
				s.User.LogStateChange(fmt.Sprintf("Stored preferences cover %d of %d consent groups", len(stored), s.Registry.Len()))
			} else {
				s.User.LogValidation(false, "No stored preferences", nil)
			}
			s.User.LogStateChange(fmt.Sprintf("Widget is %s", s.Engine.Widget().State()))

			for _, c := range s.Jar.Cookies() {
				if c.Name == s.Config.CookieName {
					fmt.Fprintf(out, "cookie: %s\n", c)
				}
			}

			if showMetrics {
				fmt.Fprintln(out)
				if err := metrics.WriteText(out, s.Gatherer); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print the event metrics collected during the run")
	return cmd
}
