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
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shoenig/test"
)

type ErrBody int

func (ErrBody) Read(p []byte) (int, error) {
	return 0, errors.New("some error")
}

func TestEnv(t *testing.T) {
	env := Env{"A=1", "B=x=y", "A=2", "=C:=C:\\", "BROKEN"}

	v, ok := env.Lookup("A")
	test.True(t, ok)
	test.EqOp(t, "1", v)
	test.EqOp(t, "x=y", env.Get("B"))

	_, ok = env.Lookup("MISSING")
	test.False(t, ok)
	test.EqOp(t, "", env.Get("MISSING"))

	var names []string
	env.Each(func(name, _ string) {
		names = append(names, name)
	})
	test.Eq(t, []string{"A", "B", "A"}, names)
}

func TestReadRequest(t *testing.T) {
	var tests = []struct {
		name     string
		env      Env
		stdin    string
		maxBody  int64
		expected Request
		err      error
	}{
		{
			"empty env",
			Env{},
			"",
			0,
			Request{},
			nil,
		},
		{
			"get ignores body",
			Env{"REQUEST_METHOD=GET", "QUERY_STRING=a=1&b=2", "CONTENT_LENGTH=5", "SCRIPT_NAME=/cgi-bin/echo"},
			"hello",
			0,
			Request{
				Method:        "GET",
				QueryString:   "a=1&b=2",
				ContentLength: "5",
				ScriptName:    "/cgi-bin/echo",
			},
			nil,
		},
		{
			"post",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=5"},
			"hello world",
			0,
			Request{Method: "POST", ContentLength: "5", PostData: "hello"},
			nil,
		},
		{
			"post content length with spaces",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH= 5 "},
			"hello",
			0,
			Request{Method: "POST", ContentLength: " 5 ", PostData: "hello"},
			nil,
		},
		{
			"post without content length",
			Env{"REQUEST_METHOD=POST"},
			"hello",
			0,
			Request{Method: "POST"},
			nil,
		},
		{
			"post zero content length",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=0"},
			"hello",
			0,
			Request{Method: "POST", ContentLength: "0"},
			nil,
		},
		{
			"post negative content length",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=-3"},
			"hello",
			0,
			Request{Method: "POST", ContentLength: "-3"},
			nil,
		},
		{
			"post non numeric content length",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=abc"},
			"hello",
			0,
			Request{Method: "POST", ContentLength: "abc", PostData: PostDataError},
			BadContentLengthError,
		},
		{
			"post empty content length",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH="},
			"hello",
			0,
			Request{Method: "POST", PostData: PostDataError},
			BadContentLengthError,
		},
		{
			"post short body",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=10"},
			"hello",
			0,
			Request{Method: "POST", ContentLength: "10", PostData: "hello"},
			nil,
		},
		{
			"post truncated body",
			Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=11"},
			"hello world",
			4,
			Request{Method: "POST", ContentLength: "11", PostData: "hell"},
			nil,
		},
		{
			"lowercase post is not post",
			Env{"REQUEST_METHOD=post", "CONTENT_LENGTH=5"},
			"hello",
			0,
			Request{Method: "post", ContentLength: "5"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ReadRequest(tt.env, strings.NewReader(tt.stdin), tt.maxBody, zerolog.Nop())
			if tt.err == nil {
				test.NoError(t, r.BodyErr)
			} else {
				test.ErrorIs(t, r.BodyErr, tt.err)
			}
			r.BodyErr = nil
			test.Eq(t, tt.expected, r)
		})
	}
}

func TestReadRequest_BadBody(t *testing.T) {
	env := Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=100"}
	r := ReadRequest(env, ErrBody(0), 0, zerolog.Nop())
	test.ErrorIs(t, r.BodyErr, BodyReadError)
	test.EqOp(t, PostDataError, r.PostData)
}

func TestReadRequest_NilStdin(t *testing.T) {
	env := Env{"REQUEST_METHOD=POST", "CONTENT_LENGTH=5"}
	r := ReadRequest(env, nil, 0, zerolog.Nop())
	test.NoError(t, r.BodyErr)
	test.EqOp(t, "", r.PostData)
}
