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

	"github.com/spf13/cobra"

	"github.com/jucacrispim/cgi-echo/internal/echo"
)

func newCmdVersion(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print cgi-echo version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintln(w, Version)
			return err
		},
	}
}

func newCmdVariants(w io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "list the pages cgi-echo can render",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, v := range echo.Variants {
				if _, err := fmt.Fprintf(w, "%-6s %s\n", v.Variant, v.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
