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
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// PostDataError is echoed in place of the body when it can't be read.
const PostDataError = "Error reading POST data"

var BadContentLengthError = errors.New("[cgi-echo] CONTENT_LENGTH is not a number")
var BodyReadError = errors.New("[cgi-echo] can't read request body")

// Request holds the request values a CGI program receives.
type Request struct {
	Method        string
	QueryString   string
	ContentLength string
	ScriptName    string
	PostData      string
	// BodyErr is set when PostData holds PostDataError.
	BodyErr error
}

// ReadRequest collects the request metadata from env and, for POST
// requests, reads the body from stdin. It never fails: missing values
// become empty strings and a broken body becomes PostDataError.
func ReadRequest(env Env, stdin io.Reader, maxBody int64, logger zerolog.Logger) Request {
	r := Request{
		Method:        env.Get("REQUEST_METHOD"),
		QueryString:   env.Get("QUERY_STRING"),
		ContentLength: env.Get("CONTENT_LENGTH"),
		ScriptName:    env.Get("SCRIPT_NAME"),
	}
	if r.Method != "POST" {
		return r
	}

	cl, present := env.Lookup("CONTENT_LENGTH")
	if !present {
		return r
	}
	n, err := parseContentLength(cl)
	if err != nil {
		logger.Warn().Err(err).Str("content_length", cl).Msg("bad content length")
		r.PostData = PostDataError
		r.BodyErr = err
		return r
	}
	if n <= 0 {
		return r
	}
	if maxBody > 0 && n > maxBody {
		logger.Warn().
			Int64("content_length", n).
			Int64("max_body", maxBody).
			Msg("body truncated")
		n = maxBody
	}

	body, err := readBody(stdin, n)
	if err != nil {
		logger.Error().Err(err).Msg("reading body")
		r.PostData = PostDataError
		r.BodyErr = err
		return r
	}
	if int64(len(body)) < n {
		logger.Debug().
			Int64("content_length", n).
			Int("read", len(body)).
			Msg("short body")
	}
	r.PostData = string(body)
	return r
}

func parseContentLength(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", BadContentLengthError, s)
	}
	return n, nil
}

// readBody reads at most n bytes. Hitting EOF early is not an error.
func readBody(stdin io.Reader, n int64) ([]byte, error) {
	if stdin == nil {
		return nil, nil
	}
	b, err := io.ReadAll(io.LimitReader(stdin, n))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", BodyReadError, err)
	}
	return b, nil
}
