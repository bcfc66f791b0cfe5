package partials

import (
	"github.com/DukeRupert/youkai/internal/domain"
)

// SearchResultsData contains data for the search results partial.
type SearchResultsData struct {
	Query   string         // Term as entered
	Results []SearchResult // Matches in gallery order
}

// SearchResult is one artwork in the search dropdown.
type SearchResult struct {
	Title    string // Display title
	URL      string // Detail page path
	Tags     []string
	Featured bool
}

// ToSearchResultsData converts artworks into search result rows. Artworks
// without a slug have no page to link to and are left out.
func ToSearchResultsData(query string, artworks []domain.Artwork) SearchResultsData {
	results := make([]SearchResult, 0, len(artworks))
	for i := range artworks {
		a := &artworks[i]
		if a.Slug == "" {
			continue
		}
		results = append(results, SearchResult{
			Title:    a.DisplayTitle(),
			URL:      a.Path(),
			Tags:     a.Tags,
			Featured: a.Featured,
		})
	}
	return SearchResultsData{Query: query, Results: results}
}
