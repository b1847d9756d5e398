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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
	"github.com/walteh/cookieconsent/pkg/config"
)

// validation is the outcome of loading one config file.
type validation struct {
	Path   string
	Config *config.Config
	Err    error
}

// NewValidateCmd creates a new validate command
func NewValidateCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config files...]",
		Short: "Check consent configuration files",
		Long: `Validate loads each config file (YAML, JSON, TOML or HCL) and checks its
consent groups, session settings and scripts. Files are checked concurrently;
the --config file is used when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) == 0 {
				args = []string{o.ConfigFile}
			}

			user := opts.NewUserLogger(ctx)
			failed := 0
			for _, v := range validateFiles(ctx, args) {
				if v.Err != nil {
					failed++
					user.LogValidation(false, v.Path, v.Err)
					continue
				}
				user.LogValidation(true, fmt.Sprintf("%s: %s", v.Path, v.Config), nil)
			}

			if failed > 0 {
				return errors.Errorf("%d of %d config files are invalid", failed, len(args))
			}
			return nil
		},
	}
	return cmd
}

// validateFiles loads every path concurrently. Results keep the order of paths.
func validateFiles(ctx context.Context, paths []string) []validation {
	results := make([]validation, len(paths))

	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			cfg, err := config.Load(ctx, path)
			results[i] = validation{Path: path, Config: cfg, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
