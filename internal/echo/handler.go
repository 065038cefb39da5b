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

// Package echo answers a CGI request with a page describing it: the
// request metadata, the POST body and, depending on the variant, the
// environment or the decoded form fields.
package echo

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"text/template"

	"github.com/rs/zerolog"
)

const (
	contentTypeHTML  = "text/html"
	contentTypePlain = "text/plain"

	echoTitle = "CGI Script Works!"
	formTitle = "Form Data"

	// NoPostData replaces the field list when no form field decodes.
	NoPostData = "No POST data received"
)

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"v": func(s string) string { return s },
}).Parse(`<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>REQUEST_METHOD: {{v .Request.Method}}</p>
<p>QUERY_STRING: {{v .Request.QueryString}}</p>
<p>CONTENT_LENGTH: {{v .Request.ContentLength}}</p>
<p>SCRIPT_NAME: {{v .Request.ScriptName}}</p>
{{range .Extra}}<p>{{v .Name}}: {{v .Value}}</p>
{{end}}<p>POST_DATA: {{v .Request.PostData}}</p>
{{if .Form}}{{if .Fields}}<ul>
{{range .Fields}}<li>{{v .Name}}: {{v .Value}}</li>
{{end}}</ul>
{{else}}<p>` + NoPostData + `</p>
{{end}}{{end}}</body>
</html>
`))

type page struct {
	Title   string
	Request Request
	Extra   []Field
	Form    bool
	Fields  []Field
}

// Handler answers a single CGI request.
type Handler struct {
	Variant Variant
	// Diagnostics dumps the environment before the page. Always on
	// for VariantEnv.
	Diagnostics bool
	// Escape HTML-escapes echoed values. Off by default so values are
	// echoed as received.
	Escape bool
	// MaxBody caps how much of the body is read. Zero means no cap.
	MaxBody int64
	// ExtraVars are environment variables reported after SCRIPT_NAME.
	ExtraVars []string
	Logger    zerolog.Logger
}

func (h Handler) diagnostics() bool {
	return h.Diagnostics || h.Variant == VariantEnv
}

// Handle reads the request from env and stdin and writes the CGI
// response to stdout. Only write errors are returned.
func (h Handler) Handle(env Env, stdin io.Reader, stdout io.Writer) error {
	req := ReadRequest(env, stdin, h.MaxBody, h.Logger)
	h.Logger.Debug().
		Str("variant", h.Variant.String()).
		Str("method", req.Method).
		Str("script", req.ScriptName).
		Int("body", len(req.PostData)).
		Msg("handling request")

	w := bufio.NewWriter(stdout)
	if err := h.write(w, env, req); err != nil {
		return err
	}
	return w.Flush()
}

func (h Handler) write(w io.Writer, env Env, req Request) error {
	contentType := contentTypeHTML
	if h.diagnostics() {
		contentType = contentTypePlain
	}
	if _, err := fmt.Fprintf(w, "Content-Type: %s\n\n", contentType); err != nil {
		return err
	}

	if h.diagnostics() {
		if err := writeEnv(w, env); err != nil {
			return err
		}
	}

	p := page{
		Title:   echoTitle,
		Request: req,
		Form:    h.Variant == VariantForm,
	}
	for _, name := range h.ExtraVars {
		p.Extra = append(p.Extra, Field{Name: name, Value: env.Get(name)})
	}
	if p.Form {
		p.Title = formTitle
		if req.BodyErr == nil {
			p.Fields = ParseForm(req.PostData, h.Logger)
		}
	}

	tmpl, err := pageTmpl.Clone()
	if err != nil {
		return err
	}
	if h.Escape {
		tmpl.Funcs(template.FuncMap{"v": html.EscapeString})
	}
	return tmpl.Execute(w, p)
}

func writeEnv(w io.Writer, env Env) error {
	if _, err := io.WriteString(w, "DEBUG: Environment Variables:\n"); err != nil {
		return err
	}
	var err error
	env.Each(func(name, value string) {
		if err != nil {
			return
		}
		_, err = fmt.Fprintf(w, "%s: %s\n", name, value)
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
