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
	"os"
	"strings"
)

// Env is a process environment as KEY=VALUE entries, in process order.
type Env []string

func OSEnv() Env {
	return Env(os.Environ())
}

// EnvFromMap builds an Env from m. Entries come out in no particular order.
func EnvFromMap(m map[string]string) Env {
	env := make(Env, 0, len(m))
	for k, v := range m {
		env = append(env, k+"="+v)
	}
	return env
}

// Lookup returns the value of the first entry named key.
func (e Env) Lookup(key string) (string, bool) {
	for _, kv := range e {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k == key {
			return v, true
		}
	}
	return "", false
}

func (e Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Each calls fn for every well formed entry.
func (e Env) Each(fn func(name, value string)) {
	for _, kv := range e {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		fn(k, v)
	}
}
