// Package templates holds the HTMX fragments served by the handlers. Every
// component is a templ.Component; data structs carry display-ready strings.
package templates

import (
	"io"

	"github.com/a-h/templ"
)

// htmlWriter stops writing after the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

// cell writes <td class="...">text</td>.
func (h *htmlWriter) cell(class, s string) {
	if class == "" {
		h.raw("<td>")
	} else {
		h.raw(`<td class="` + templ.EscapeString(class) + `">`)
	}
	h.text(s)
	h.raw("</td>")
}

func (h *htmlWriter) headerRow(cols ...string) {
	h.raw("<thead><tr>")
	for _, c := range cols {
		h.raw("<th>")
		h.text(c)
		h.raw("</th>")
	}
	h.raw("</tr></thead>")
}

// link writes an anchor; unsafe URLs are replaced by templ's failed-sanitization URL.
func (h *htmlWriter) link(href, class, label string) {
	h.raw(`<a href="` + templ.EscapeString(string(templ.URL(href))) + `" class="` + templ.EscapeString(class) + `">`)
	h.text(label)
	h.raw("</a>")
}
