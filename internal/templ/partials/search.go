// Package partials renders page fragments swapped in by htmx outside the
// gallery grid.
package partials

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/DukeRupert/youkai/internal/templ/components/ui"
)

// SearchResults renders the result list for a search term. A blank term
// renders nothing so the dropdown collapses.
func SearchResults(data SearchResultsData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if strings.TrimSpace(data.Query) == "" {
			return nil
		}

		var b strings.Builder
		b.WriteString(`<div id="search-results" class="mt-2 rounded-md border border-stone-200 bg-white shadow-lg">`)
		if len(data.Results) == 0 {
			fmt.Fprintf(&b, `<p class="%s">No artworks match &ldquo;%s&rdquo;.</p>`,
				templ.EscapeString(ui.TextClass(ui.TextMuted, "p-4")), templ.EscapeString(data.Query))
		} else {
			b.WriteString(`<ul class="divide-y divide-stone-100">`)
			for _, r := range data.Results {
				fmt.Fprintf(&b, `<li><a href="%s" class="block px-4 py-3 hover:bg-stone-50">`, ui.URL(r.URL))
				fmt.Fprintf(&b, `<span class="%s">%s</span>`, templ.EscapeString(ui.TextClass(ui.TextBody, "font-medium")), templ.EscapeString(r.Title))
				if r.Featured {
					b.WriteString(` <span class="ml-2 rounded bg-amber-100 px-2 py-0.5 text-xs text-amber-800">Featured</span>`)
				}
				if len(r.Tags) > 0 {
					fmt.Fprintf(&b, `<span class="%s">%s</span>`, templ.EscapeString(ui.TextClass(ui.TextMuted, "block")), templ.EscapeString(strings.Join(r.Tags, ", ")))
				}
				b.WriteString(`</a></li>`)
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}
