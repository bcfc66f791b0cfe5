package masonry

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/DukeRupert/youkai/internal/domain"
	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

const (
	gridID    = "gallery-items"
	statusID  = "gallery-status"
	trackerID = "gallery-scroll"
)

// Grid renders the complete gallery body for a session: the items, the
// status footer and the scroll tracker.
func Grid(data Data) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := data.Status
		status.SessionID = data.SessionID

		switch status.Phase {
		case PhaseLoading:
			return Loading().Render(ctx, w)
		case PhaseError:
			return ErrorState(status.Error, Routes{SessionID: data.SessionID}.Retry()).Render(ctx, w)
		case PhaseEmpty:
			return EmptyState(Routes{SessionID: data.SessionID}.Retry()).Render(ctx, w)
		}

		var b strings.Builder
		fmt.Fprintf(&b, `<div id="gallery" data-session="%s">`, templ.EscapeString(data.SessionID))
		fmt.Fprintf(&b, `<div id="%s" class="columns-1 gap-4 sm:columns-2 lg:columns-3 xl:columns-4">`, gridID)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := Items(data.SessionID, data.Items).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		if err := Footer(status, false).Render(ctx, w); err != nil {
			return err
		}
		if err := Tracker(data.SessionID).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// Items renders layout items. Each item links to its detail page and, when
// the artwork has a slug, opens the overlay in place.
func Items(sessionID string, items []domain.LayoutItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		routes := Routes{SessionID: sessionID}
		var b strings.Builder
		for _, item := range items {
			fmt.Fprintf(&b, `<a id="item-%s" href="%s" class="group relative mb-4 block break-inside-avoid overflow-hidden rounded-lg bg-stone-100" style="height: %dpx"`,
				templ.EscapeString(item.ID), ui.URL(item.URL), item.Height)
			if item.Slug != "" {
				fmt.Fprintf(&b, ` hx-get="%s" hx-target="#overlay" hx-swap="innerHTML"`, ui.URL(routes.Overlay(item.Slug)))
			}
			b.WriteString(`>`)
			fmt.Fprintf(&b, `<img src="%s" alt="%s" loading="lazy" class="h-full w-full object-cover transition-transform duration-300 group-hover:scale-105">`,
				ui.URL(item.Image), templ.EscapeString(item.Title))
			fmt.Fprintf(&b, `<span class="%s">%s</span>`,
				templ.EscapeString(ui.TextClass(ui.TextBody, "absolute inset-x-0 bottom-0 bg-gradient-to-t from-black/60 p-3 text-white opacity-0 transition-opacity group-hover:opacity-100")),
				templ.EscapeString(item.Title))
			b.WriteString(`</a>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Footer renders the status line under the grid. When oob is set the
// element is marked for an out-of-band htmx swap.
func Footer(status Status, oob bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" class="py-8 text-center" data-phase="%s"`, statusID, templ.EscapeString(status.Phase))
		if oob {
			b.WriteString(` hx-swap-oob="true"`)
		}
		b.WriteString(`>`)

		if status.Error != "" {
			fmt.Fprintf(&b, `<p class="%s" role="alert">%s</p>`, templ.EscapeString(ui.TextClass(ui.TextError)), templ.EscapeString(status.Error))
		}
		switch {
		case status.Phase == PhaseLoadingMore:
			fmt.Fprintf(&b, `<p class="%s">Loading more artworks...</p>`, templ.EscapeString(ui.TextClass(ui.TextMuted)))
		case status.Phase == PhaseExhausted || !status.HasMore:
			fmt.Fprintf(&b, `<p class="%s">%s</p>`, templ.EscapeString(ui.TextClass(ui.TextMuted)), templ.EscapeString(ExhaustedMessage))
		}

		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Tracker posts scroll positions to the session, at most one every 100ms.
// Requests queue behind the one in flight so a response carrying new items
// is never aborted. Browser
// back and forward are reported so the overlay follows the URL.
func Tracker(sessionID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		routes := Routes{SessionID: sessionID}
		_, err := fmt.Fprintf(w,
			`<div id="%s" hidden hx-post="%s" hx-trigger="scroll from:window throttle:100ms" hx-target="#%s" hx-swap="beforeend" hx-sync="this:queue last" hx-vals='js:{top: Math.round(window.scrollY), viewport: window.innerHeight, document: document.documentElement.scrollHeight}'></div>`+
				`<div hidden hx-post="%s" hx-trigger="popstate from:window" hx-target="#overlay" hx-swap="innerHTML" hx-vals='js:{url: location.pathname + location.search}'></div>`,
			trackerID, ui.URL(routes.Scroll()), gridID, ui.URL(routes.Navigate()))
		return err
	})
}

// Append is the response to a scroll that loaded a page: the new items for
// the grid plus the refreshed footer.
func Append(status Status, items []domain.LayoutItem) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return ui.Render(ctx, w, Items(status.SessionID, items), Footer(status, true))
	})
}

// Loading renders the initial loading indicator.
func Loading() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="gallery" class="flex min-h-[50vh] items-center justify-center" aria-busy="true"><p class="%s">Loading gallery...</p></div>`,
			templ.EscapeString(ui.TextClass(ui.TextMuted)))
		return err
	})
}

// ErrorState renders a failed initial load with a retry button.
func ErrorState(message, retryURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			message = domain.MsgLoadFailed
		}
		var b strings.Builder
		b.WriteString(`<div id="gallery" class="flex min-h-[50vh] flex-col items-center justify-center gap-4 text-center">`)
		fmt.Fprintf(&b, `<h2 class="%s">Something went wrong</h2>`, templ.EscapeString(ui.TextClass(ui.TextTitle)))
		fmt.Fprintf(&b, `<p class="%s" role="alert">%s</p>`, templ.EscapeString(ui.TextClass(ui.TextError)), templ.EscapeString(message))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := retryButton(retryURL).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// EmptyState renders a gallery with no artworks.
func EmptyState(retryURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="gallery" class="flex min-h-[50vh] flex-col items-center justify-center gap-4 text-center">`)
		fmt.Fprintf(&b, `<h2 class="%s">No Artworks Found</h2>`, templ.EscapeString(ui.TextClass(ui.TextTitle)))
		fmt.Fprintf(&b, `<p class="%s">Check back soon for new pieces.</p>`, templ.EscapeString(ui.TextClass(ui.TextMuted)))
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := retryButton(retryURL).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func retryButton(retryURL string) templ.Component {
	return ui.Button(ui.ButtonOutline, "Try again",
		ui.Attr{Name: "hx-post", Value: retryURL},
		ui.Attr{Name: "hx-target", Value: "#gallery"},
		ui.Attr{Name: "hx-swap", Value: "outerHTML"},
	)
}
