package overlay

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/youkai/internal/domain"
)

func TestOverlay(t *testing.T) {
	d := Data{
		SessionID: "s1",
		Slug:      "fox",
		Title:     "Fox",
		Tags:      []string{"animals"},
		Images:    []domain.ProcessedImage{{URL: "https://cdn/fox.jpg", Alt: "Sketch image 1", Width: 1200, Height: 800}},
		DetailURL: "/sketch/fox",
		Next:      &Link{Title: "Owl", Slug: "owl"},
	}

	var b strings.Builder
	require.NoError(t, Overlay(d).Render(context.Background(), &b))
	out := b.String()

	assert.Contains(t, out, `data-sketch="fox"`)
	assert.Contains(t, out, `hx-delete="/gallery/sessions/s1/overlay"`)
	assert.Contains(t, out, `keyup[key==&#39;Escape&#39;] from:body`)
	assert.Contains(t, out, `hx-get="/gallery/sessions/s1/overlay?sketch=owl"`)
	assert.Contains(t, out, "Owl →")
	assert.NotContains(t, out, "ArrowLeft")
	assert.Contains(t, out, `alt="Sketch image 1"`)
	assert.Contains(t, out, `href="/sketch/fox"`)
}

func TestFromSummary(t *testing.T) {
	assert.Nil(t, FromSummary(nil))
	assert.Nil(t, FromSummary(&domain.ArtworkSummary{ID: "a"}))
	assert.Equal(t, &Link{Title: "Untitled", Slug: "a"}, FromSummary(&domain.ArtworkSummary{ID: "a", Slug: "a"}))
}

func TestNotFound(t *testing.T) {
	var b strings.Builder
	require.NoError(t, NotFound("s1").Render(context.Background(), &b))
	assert.Contains(t, b.String(), "Sketch Not Found")
}
