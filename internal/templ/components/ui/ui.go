// Package ui holds the shared class variants and small building blocks used
// by the gallery components.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"
)

// ButtonVariant selects a button style.
type ButtonVariant string

const (
	ButtonPrimary ButtonVariant = "primary"
	ButtonOutline ButtonVariant = "outline"
	ButtonGhost   ButtonVariant = "ghost"
	ButtonIcon    ButtonVariant = "icon"
)

const buttonBase = "inline-flex items-center justify-center gap-2 rounded-md px-4 py-2 text-sm font-medium transition-colors focus:outline-none focus-visible:ring-2 focus-visible:ring-stone-400 disabled:pointer-events-none disabled:opacity-50"

var buttonVariants = map[ButtonVariant]string{
	ButtonPrimary: "bg-stone-900 text-white hover:bg-stone-700",
	ButtonOutline: "border border-stone-300 bg-white text-stone-900 hover:bg-stone-100",
	ButtonGhost:   "bg-transparent text-stone-700 hover:bg-stone-100",
	ButtonIcon:    "h-10 w-10 rounded-full bg-white/80 p-0 text-stone-900 shadow hover:bg-white",
}

// ButtonClass returns the merged classes for a button. Later classes in
// extra win over the variant defaults.
func ButtonClass(variant ButtonVariant, extra ...string) string {
	v, ok := buttonVariants[variant]
	if !ok {
		v = buttonVariants[ButtonPrimary]
	}
	return twmerge.Merge(append([]string{buttonBase, v}, extra...)...)
}

// TextVariant selects a text style.
type TextVariant string

const (
	TextHeading TextVariant = "heading"
	TextTitle   TextVariant = "title"
	TextBody    TextVariant = "body"
	TextMuted   TextVariant = "muted"
	TextError   TextVariant = "error"
)

var textVariants = map[TextVariant]string{
	TextHeading: "font-serif text-3xl font-semibold tracking-tight text-stone-900",
	TextTitle:   "text-lg font-medium text-stone-900",
	TextBody:    "text-base text-stone-700",
	TextMuted:   "text-sm text-stone-500",
	TextError:   "text-sm text-red-600",
}

// TextClass returns the merged classes for a text element.
func TextClass(variant TextVariant, extra ...string) string {
	return twmerge.Merge(append([]string{textVariants[variant]}, extra...)...)
}

// Attr is a single HTML attribute.
type Attr struct {
	Name  string
	Value string
}

// Button renders a <button> with the given variant, label and attributes.
func Button(variant ButtonVariant, label string, attrs ...Attr) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<button type="button" class="%s"`, templ.EscapeString(ButtonClass(variant)))
		WriteAttrs(&b, attrs)
		fmt.Fprintf(&b, `>%s</button>`, templ.EscapeString(label))
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Text renders text inside tag with the variant classes.
func Text(tag string, variant TextVariant, text string, extra ...string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<%s class="%s">%s</%s>`, tag, templ.EscapeString(TextClass(variant, extra...)), templ.EscapeString(text), tag)
		return err
	})
}

// WriteAttrs writes escaped attributes, each preceded by a space. URL
// attributes are sanitised first.
func WriteAttrs(b *strings.Builder, attrs []Attr) {
	for _, a := range attrs {
		value := templ.EscapeString(a.Value)
		if urlAttrs[a.Name] {
			value = URL(a.Value)
		}
		fmt.Fprintf(b, ` %s="%s"`, a.Name, value)
	}
}

var urlAttrs = map[string]bool{
	"href": true, "src": true, "action": true,
	"hx-get": true, "hx-post": true, "hx-put": true, "hx-patch": true, "hx-delete": true,
}

// URL sanitises u with templ.URL and escapes it for an attribute value.
// Unsafe schemes such as javascript: render as templ.FailedSanitizationURL.
func URL(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

// Render writes each component to w in order, stopping at the first error.
func Render(ctx context.Context, w io.Writer, components ...templ.Component) error {
	for _, c := range components {
		if c == nil {
			continue
		}
		if err := c.Render(ctx, w); err != nil {
			return err
		}
	}
	return nil
}
