package overlay

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

// Overlay renders the modal for a selected artwork. Escape closes it and the
// arrow keys move to the neighbors.
func Overlay(d Data) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		routes := d.routes()
		var b strings.Builder

		fmt.Fprintf(&b, `<div class="fixed inset-0 z-50 flex items-center justify-center bg-black/80 p-4" role="dialog" aria-modal="true" aria-label="%s" data-sketch="%s">`,
			templ.EscapeString(d.Title), templ.EscapeString(d.Slug))
		b.WriteString(`<div class="relative max-h-full w-full max-w-5xl overflow-y-auto rounded-lg bg-white p-6">`)

		b.WriteString(`<div class="absolute right-4 top-4">`)
		writeComponent(ctx, &b, ui.Button(ui.ButtonIcon, "×",
			ui.Attr{Name: "aria-label", Value: "Close"},
			ui.Attr{Name: "hx-delete", Value: routes.Overlay("")},
			ui.Attr{Name: "hx-target", Value: "#overlay"},
			ui.Attr{Name: "hx-swap", Value: "innerHTML"},
			ui.Attr{Name: "hx-trigger", Value: "click, keyup[key=='Escape'] from:body"},
		))
		b.WriteString(`</div>`)

		writeComponent(ctx, &b, ui.Text("h2", ui.TextHeading, d.Title, "pr-12"))
		if d.Description != "" {
			writeComponent(ctx, &b, ui.Text("p", ui.TextBody, d.Description, "mt-2"))
		}
		if len(d.Tags) > 0 {
			b.WriteString(`<ul class="mt-3 flex flex-wrap gap-2">`)
			for _, tag := range d.Tags {
				fmt.Fprintf(&b, `<li class="rounded-full bg-stone-100 px-3 py-1 text-xs text-stone-600">%s</li>`, templ.EscapeString(tag))
			}
			b.WriteString(`</ul>`)
		}

		b.WriteString(`<div class="mt-6 space-y-6">`)
		for _, img := range d.Images {
			fmt.Fprintf(&b, `<figure><img src="%s" alt="%s" width="%d" height="%d" class="w-full rounded-md object-contain">`,
				ui.URL(img.URL), templ.EscapeString(img.Alt), img.Width, img.Height)
			if img.Caption != "" {
				fmt.Fprintf(&b, `<figcaption class="%s">%s</figcaption>`, templ.EscapeString(ui.TextClass(ui.TextMuted, "mt-2")), templ.EscapeString(img.Caption))
			}
			b.WriteString(`</figure>`)
		}
		b.WriteString(`</div>`)

		b.WriteString(`<nav class="mt-6 flex items-center justify-between gap-4" aria-label="Artwork navigation">`)
		writeNeighbor(ctx, &b, d, d.Previous, "ArrowLeft", "← ")
		fmt.Fprintf(&b, `<a href="%s" class="%s">View full page</a>`, ui.URL(d.DetailURL), templ.EscapeString(ui.ButtonClass(ui.ButtonGhost)))
		writeNeighbor(ctx, &b, d, d.Next, "ArrowRight", "")
		b.WriteString(`</nav>`)

		b.WriteString(`</div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeNeighbor(ctx context.Context, b *strings.Builder, d Data, link *Link, key, prefix string) {
	if link == nil {
		b.WriteString(`<span></span>`)
		return
	}
	label := prefix + link.Title
	if prefix == "" {
		label = link.Title + " →"
	}
	writeComponent(ctx, b, ui.Button(ui.ButtonOutline, label,
		ui.Attr{Name: "hx-get", Value: d.routes().Overlay(link.Slug)},
		ui.Attr{Name: "hx-target", Value: "#overlay"},
		ui.Attr{Name: "hx-swap", Value: "innerHTML"},
		ui.Attr{Name: "hx-trigger", Value: fmt.Sprintf("click, keyup[key=='%s'] from:body", key)},
	))
}

// writeComponent renders c into b. Components rendered into a builder never
// fail on write.
func writeComponent(ctx context.Context, b *strings.Builder, c templ.Component) {
	_ = c.Render(ctx, b)
}

// NotFound renders the overlay for a slug that resolves to nothing.
func NotFound(sessionID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		d := Data{SessionID: sessionID}
		var b strings.Builder
		b.WriteString(`<div class="fixed inset-0 z-50 flex items-center justify-center bg-black/80 p-4" role="dialog" aria-modal="true">`)
		b.WriteString(`<div class="rounded-lg bg-white p-8 text-center">`)
		writeComponent(ctx, &b, ui.Text("h2", ui.TextTitle, "Sketch Not Found"))
		writeComponent(ctx, &b, ui.Text("p", ui.TextMuted, "The requested sketch could not be found.", "mt-2"))
		b.WriteString(`<div class="mt-6">`)
		writeComponent(ctx, &b, ui.Button(ui.ButtonOutline, "Back to gallery",
			ui.Attr{Name: "hx-delete", Value: d.routes().Overlay("")},
			ui.Attr{Name: "hx-target", Value: "#overlay"},
			ui.Attr{Name: "hx-swap", Value: "innerHTML"},
		))
		b.WriteString(`</div></div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
