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

// Package cgitest plays the gateway side of CGI for tests: it turns an
// *http.Request into a CGI environment, runs programs and splits their
// output into headers and body.
package cgitest

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jucacrispim/cgi-echo/internal/echo"
)

var UnknownSchemeError = errors.New("[cgi-echo] Unknown scheme")
var ConfusionError = errors.New("[cgi-echo] Im'm confused")
var InvalidCgiResponse = errors.New("[cgi-echo] Invalid cgi response")

// MetaVars returns the CGI/1.1 meta-variables for r as seen by the
// program at scriptName.
func MetaVars(r *http.Request, scriptName string) (echo.Env, error) {
	headers := []string{
		"Auth-Type",
		"Remote-User",
		"Content-Type",
		"Server-Software",
	}
	meta := make(map[string]string)

	for _, h := range headers {
		rHeader := r.Header.Get(h)
		if rHeader != "" {
			meta[strings.ReplaceAll(strings.ToUpper(h), "-", "_")] = rHeader
		}
	}

	if r.ContentLength >= 0 {
		meta["CONTENT_LENGTH"] = strconv.FormatInt(r.ContentLength, 10)
	}
	meta["GATEWAY_INTERFACE"] = "CGI/1.1"
	meta["PATH_INFO"] = r.URL.Path
	meta["SCRIPT_NAME"] = scriptName
	meta["QUERY_STRING"] = r.URL.RawQuery
	meta["REMOTE_ADDR"] = r.RemoteAddr
	meta["REQUEST_METHOD"] = r.Method
	meta["SERVER_NAME"] = getDomainForRequest(r)
	port, err := getPortForRequest(r)
	if err != nil {
		return nil, err
	}
	meta["SERVER_PORT"] = strconv.Itoa(port)
	meta["SERVER_PROTOCOL"] = r.Proto

	return echo.EnvFromMap(meta), nil
}

func getDomainForRequest(req *http.Request) string {
	domain := strings.Split(req.Host, ":")[0]
	domain = strings.ToLower(domain)
	return domain
}

func getPortForRequest(r *http.Request) (int, error) {
	hostParts := strings.Split(r.Host, ":")
	partsLen := len(hostParts)
	if partsLen > 2 {
		return 0, ConfusionError
	}
	if len(hostParts) == 2 {
		return strconv.Atoi(hostParts[1])
	}

	if r.TLS != nil {
		return 443, nil
	}
	sc := r.URL.Scheme
	switch sc {
	case "http", "":
		return 80, nil

	case "https":
		return 443, nil
	}
	return 0, UnknownSchemeError
}

func isNewLine(s string) bool {
	if s == "\r" || s == "" {
		return true
	}
	return false
}

// ParseResponse splits CGI output into its header block and body.
func ParseResponse(response []byte) (map[string]string, []byte, error) {
	headers := make(map[string]string)
	delim := byte('\n')
	previousDelim := 0
	for i, b := range response {
		if b != delim {
			continue
		}
		line := string(response[previousDelim:i])
		if isNewLine(line) {
			return headers, response[i+1:], nil
		}
		previousDelim = i + 1
		line = strings.TrimRight(line, "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, nil, InvalidCgiResponse
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return nil, nil, InvalidCgiResponse
}

// Exec runs the CGI program at path with env and body on its stdin and
// returns what it wrote to stdout.
func Exec(ctx context.Context, path string, env echo.Env, body []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, path)
	cmd.Env = env
	if body != nil {
		cmd.Stdin = bytes.NewReader(body)
	}
	return cmd.Output()
}
