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

// Package config resolves how cgi-echo answers a request. Sources, from
// lowest to highest precedence: defaults, the program name, a dotenv
// file and CGI_ECHO_* environment variables. Command line flags are
// applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/jucacrispim/cgi-echo/internal/echo"
)

const (
	KeyVariant     = "CGI_ECHO_VARIANT"
	KeyDiagnostics = "CGI_ECHO_DIAGNOSTICS"
	KeyEscape      = "CGI_ECHO_ESCAPE"
	KeyDebug       = "CGI_ECHO_DEBUG"
	KeyMaxBody     = "CGI_ECHO_MAX_BODY"
	KeyExtraVars   = "CGI_ECHO_EXTRA_VARS"
	KeyEnvFile     = "CGI_ECHO_ENV_FILE"

	DefaultEnvFile = "cgi-echo.env"
	// DefaultMaxBody of zero reads the whole body.
	DefaultMaxBody = 0
)

var BadValueError = errors.New("[cgi-echo] bad config value")
var EnvFileError = errors.New("[cgi-echo] can't read env file")

type Config struct {
	Variant     echo.Variant
	Diagnostics bool
	Escape      bool
	Debug       bool
	MaxBody     int64
	ExtraVars   []string
}

var DefaultConfig = Config{
	Variant:     echo.VariantEcho,
	Diagnostics: false,
	Escape:      false,
	Debug:       false,
	MaxBody:     DefaultMaxBody,
	ExtraVars:   nil,
}

// programVariants maps installed program names to their variant, so
// one binary can be linked into cgi-bin under several names.
var programVariants = map[string]echo.Variant{
	"echo":      echo.VariantEcho,
	"echo-env":  echo.VariantEnv,
	"echo-form": echo.VariantForm,
}

// VariantForProgram returns the variant for the program called as
// argv0, if its name is one of the known ones.
func VariantForProgram(argv0 string) (echo.Variant, bool) {
	name := filepath.Base(argv0)
	name = strings.TrimSuffix(name, ".cgi")
	v, ok := programVariants[name]
	return v, ok
}

// Handler builds the request handler described by c.
func (c Config) Handler(logger zerolog.Logger) echo.Handler {
	return echo.Handler{
		Variant:     c.Variant,
		Diagnostics: c.Diagnostics,
		Escape:      c.Escape,
		MaxBody:     c.MaxBody,
		ExtraVars:   c.ExtraVars,
		Logger:      logger,
	}
}

// EnvFile returns the dotenv file to read: override when given,
// then CGI_ECHO_ENV_FILE, then DefaultEnvFile.
func EnvFile(env echo.Env, override string) string {
	if override != "" {
		return override
	}
	if f := env.Get(KeyEnvFile); f != "" {
		return f
	}
	return DefaultEnvFile
}

// Load resolves the configuration. A missing env file is fine. Bad
// values don't stop loading: the key keeps its previous value and the
// problems come back joined in the error, next to a usable Config.
func Load(fsys afero.Fs, argv0 string, env echo.Env, envFile string) (Config, error) {
	config := DefaultConfig
	if v, ok := VariantForProgram(argv0); ok {
		config.Variant = v
	}

	var errs []error
	fileVars, err := readEnvFile(fsys, envFile)
	if err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, config.apply(func(key string) (string, bool) {
		v, ok := fileVars[key]
		return v, ok
	}))
	errs = append(errs, config.apply(env.Lookup))

	return config, errors.Join(errs...)
}

func readEnvFile(fsys afero.Fs, filename string) (map[string]string, error) {
	if filename == "" {
		return nil, nil
	}

	data, errRead := afero.ReadFile(fsys, filename)
	if errRead != nil {
		if errors.Is(errRead, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w %s: %w", EnvFileError, filename, errRead)
	}

	vars, errUnmarshal := godotenv.UnmarshalBytes(data)
	if errUnmarshal != nil {
		return nil, fmt.Errorf("%w %s: %w", EnvFileError, filename, errUnmarshal)
	}
	return vars, nil
}

func (c *Config) apply(lookup func(string) (string, bool)) error {
	var errs []error
	bad := func(key, value string, err error) {
		errs = append(errs, fmt.Errorf("%w %s=%q: %w", BadValueError, key, value, err))
	}

	if s, ok := lookup(KeyVariant); ok {
		v, err := echo.ParseVariant(s)
		if err != nil {
			bad(KeyVariant, s, err)
		} else {
			c.Variant = v
		}
	}

	for key, dst := range map[string]*bool{
		KeyDiagnostics: &c.Diagnostics,
		KeyEscape:      &c.Escape,
		KeyDebug:       &c.Debug,
	} {
		s, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			bad(key, s, err)
			continue
		}
		*dst = b
	}

	if s, ok := lookup(KeyMaxBody); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		switch {
		case err != nil:
			bad(KeyMaxBody, s, err)
		case n < 0:
			bad(KeyMaxBody, s, errors.New("negative"))
		default:
			c.MaxBody = n
		}
	}

	if s, ok := lookup(KeyExtraVars); ok {
		c.ExtraVars = SplitList(s)
	}

	return errors.Join(errs...)
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var list []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
