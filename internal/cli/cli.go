// Copyright 2024 Juca Crispim <juca@poraodojuca.net>

// This file is part of cgi-echo.

// cgi-echo is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// cgi-echo is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with cgi-echo. If not, see <http://www.gnu.org/licenses/>.

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rprtr258/fun"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jucacrispim/cgi-echo/internal/config"
	"github.com/jucacrispim/cgi-echo/internal/echo"
)

const Version = "0.1.0"

// Stdio is where the request comes from and the response goes to.
// Stderr carries the logs, the gateway sends them to its error log.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type flags struct {
	variant     echo.Variant
	diagnostics bool
	escape      bool
	debug       bool
	maxBody     int64
	extraVars   []string
	envFile     string
}

func newLogger(w io.Writer, debug bool) zerolog.Logger {
	level := fun.IF(debug, zerolog.DebugLevel, zerolog.InfoLevel)

	return zerolog.New(zerolog.ConsoleWriter{ //nolint:exhaustruct // not needed
		Out:     w,
		NoColor: true,
	}).
		Level(level).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()
}

// applyFlags puts the flags given on the command line over c.
func applyFlags(fl *pflag.FlagSet, c *config.Config, f flags) {
	if fl.Changed("variant") {
		c.Variant = f.variant
	}
	if fl.Changed("diagnostics") {
		c.Diagnostics = f.diagnostics
	}
	if fl.Changed("escape") {
		c.Escape = f.escape
	}
	if fl.Changed("debug") {
		c.Debug = f.debug
	}
	if fl.Changed("max-body") {
		c.MaxBody = f.maxBody
	}
	if fl.Changed("extra-vars") {
		c.ExtraVars = f.extraVars
	}
}

func newApp(argv0 string, env echo.Env, fsys afero.Fs, stdio Stdio) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "cgi-echo",
		Short:         "echo a CGI request back as a web page",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("max-body") && f.maxBody < 0 {
				return fmt.Errorf("%w --max-body=%d: negative", config.BadValueError, f.maxBody)
			}

			c, errLoad := config.Load(fsys, argv0, env, config.EnvFile(env, f.envFile))
			applyFlags(cmd.Flags(), &c, f)

			logger := newLogger(stdio.Stderr, c.Debug)
			if errLoad != nil {
				logger.Warn().Err(errLoad).Msg("config has errors, using what could be read")
			}

			if err := c.Handler(logger).Handle(env, stdio.Stdin, stdio.Stdout); err != nil {
				logger.Error().Err(err).Msg("writing response")
				return err
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.Var(&f.variant, "variant", "page to render: echo, env or form")
	fl.BoolVar(&f.diagnostics, "diagnostics", false, "dump the environment before the page")
	fl.BoolVar(&f.escape, "escape", false, "HTML-escape echoed values")
	fl.BoolVar(&f.debug, "debug", false, "log at debug level")
	fl.Int64Var(&f.maxBody, "max-body", config.DefaultMaxBody, "read at most this many body bytes, 0 for no limit")
	fl.StringSliceVar(&f.extraVars, "extra-vars", nil, "more environment variables to report")
	fl.StringVar(&f.envFile, "env-file", "", "dotenv file with CGI_ECHO_* settings (default "+config.DefaultEnvFile+")")

	cmd.AddCommand(newCmdVersion(stdio.Stdout))
	cmd.AddCommand(newCmdVariants(stdio.Stdout))
	return cmd
}

// Run executes cgi-echo with the given arguments and environment.
func Run(argv []string, env echo.Env, fsys afero.Fs, stdio Stdio) error {
	if len(argv) == 0 {
		argv = []string{"cgi-echo"}
	}
	args := argv[1:]
	if env.Get("GATEWAY_INTERFACE") != "" {
		// gateways pass ISINDEX search words as arguments, they are not ours.
		// Not nil: cobra falls back to os.Args on nil.
		args = []string{}
	}

	app := newApp(argv[0], env, fsys, stdio)
	app.SetArgs(args)
	app.SetIn(stdio.Stdin)
	app.SetOut(stdio.Stdout)
	app.SetErr(stdio.Stderr)
	return app.Execute()
}

// Main runs cgi-echo for the current process.
func Main() error {
	return Run(os.Args, echo.OSEnv(), afero.NewOsFs(), Stdio{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	})
}
