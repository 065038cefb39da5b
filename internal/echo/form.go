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
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

type Field struct {
	Name  string
	Value string
}

// ParseForm decodes an application/x-www-form-urlencoded body. Fields
// keep the position of the first occurrence of their name; when a name
// repeats the last value wins.
func ParseForm(body string, logger zerolog.Logger) []Field {
	fields := []Field{}
	index := make(map[string]int)
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			logger.Debug().Err(err).Str("pair", pair).Msg("skipping form field")
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			logger.Debug().Err(err).Str("pair", pair).Msg("skipping form field")
			continue
		}
		if name == "" {
			continue
		}

		if i, ok := index[name]; ok {
			fields[i].Value = value
			continue
		}
		index[name] = len(fields)
		fields = append(fields, Field{Name: name, Value: value})
	}
	return fields
}
