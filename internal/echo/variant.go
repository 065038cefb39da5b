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

package echo

import (
	"errors"
	"fmt"
	"strings"
)

// Variant selects the page layout.
type Variant string

const (
	// VariantEcho renders the request metadata and the POST body.
	VariantEcho Variant = "echo"
	// VariantForm additionally decodes the POST body as a form.
	VariantForm Variant = "form"
	// VariantEnv is VariantEcho preceded by an environment dump.
	VariantEnv Variant = "env"
)

var UnknownVariantError = errors.New("[cgi-echo] unknown variant")

var Variants = []struct {
	Variant     Variant
	Description string
}{
	{VariantEcho, "request metadata and raw POST body as HTML"},
	{VariantEnv, "environment dump as plain text, then the echo page"},
	{VariantForm, "echo page plus the POST body decoded as form fields"},
}

func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case VariantEcho, VariantForm, VariantEnv:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", UnknownVariantError, s)
}

func (v Variant) String() string {
	return string(v)
}

// Set and Type make Variant usable as a command line flag.
func (v *Variant) Set(s string) error {
	p, err := ParseVariant(s)
	if err != nil {
		return err
	}
	*v = p
	return nil
}

func (v *Variant) Type() string {
	return "variant"
}
