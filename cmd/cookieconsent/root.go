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

package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/cookieconsent/cmd/cookieconsent/commands"
	"github.com/walteh/cookieconsent/cmd/cookieconsent/opts"
)

// newRootCmd builds the command tree. Options are filled in by flag parsing,
// so nothing is loaded until a subcommand runs.
func newRootCmd(rootOpts *opts.RootOpts, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cookieconsent",
		Short: "Manage cookie consent preferences from the command line",
		Long: `cookieconsent drives the consent engine against a cookie jar on disk.
Consent groups and their scripts come from a config file; decisions are stored
in the preference cookie exactly as a browser would keep them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger := setupLogging(stderr, rootOpts.Debug)
			rootOpts.Console = cmd.OutOrStdout()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	addRootFlags(rootCmd, rootOpts)

	rootCmd.AddCommand(
		commands.NewStatusCmd(rootOpts),
		commands.NewSaveCmd(rootOpts),
		commands.NewResetCmd(rootOpts),
		commands.NewScriptsCmd(rootOpts),
		commands.NewPromptCmd(rootOpts),
		commands.NewValidateCmd(rootOpts),
		newVersionCmd(),
	)
	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "cookie-notice.yaml", "config file path")
	cmd.PersistentFlags().StringVarP(&o.JarFile, "jar", "j", ".cookieconsent.jar.json", "cookie jar file path")
	cmd.PersistentFlags().StringSliceVar(&o.PageFiles, "page", nil, "javascript files run on the page before the engine starts")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).Level(level).With().Timestamp().Logger()
}
