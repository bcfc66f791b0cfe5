package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		// Math functions
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},
		"formatDateISO": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006-01-02")
		},

		// String functions
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"title": func(v interface{}) string {
			return cases.Title(language.English).String(fmt.Sprint(v))
		},
		"tagLabel": TagLabel,
		"truncate": func(s string, length int) string {
			if len(s) <= length {
				return s
			}
			return s[:length] + "..."
		},
		"count": FormatCount,
		// JSON encoding for safe JavaScript embedding
		"json": func(v interface{}) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS(`""`)
			}
			return template.JS(b)
		},

		// Conditional/Logic functions
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// templ components embedded in html/template pages
		"render": func(c templ.Component) (template.HTML, error) {
			if c == nil {
				return "", nil
			}
			return templ.ToGoHTML(context.Background(), c)
		},
	}
}

// FormatCount formats n with thousands separators ("1,234").
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// TagLabel turns a stored tag such as "ink-wash" into "Ink Wash".
func TagLabel(tag string) string {
	tag = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(tag))
	return cases.Title(language.English).String(tag)
}
