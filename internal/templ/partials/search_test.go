package partials

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/youkai/internal/domain"
)

func TestSearchResults(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		artworks []domain.Artwork
		want     []string
		empty    bool
	}{
		{name: "blank term renders nothing", query: "  ", empty: true},
		{name: "no matches", query: "zebra", want: []string{"No artworks match", "zebra"}},
		{
			name:  "matches link to detail pages",
			query: "fo",
			artworks: []domain.Artwork{
				{ID: "1", Title: "Fox", Slug: "fox", Featured: true},
				{ID: "2", Title: "Fog"},
			},
			want: []string{`href="/sketch/fox"`, "Fox", "Featured"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b strings.Builder
			require.NoError(t, SearchResults(ToSearchResultsData(tt.query, tt.artworks)).Render(context.Background(), &b))
			if tt.empty {
				assert.Empty(t, b.String())
				return
			}
			for _, s := range tt.want {
				assert.Contains(t, b.String(), s)
			}
			assert.NotContains(t, b.String(), "Fog")
		})
	}
}
