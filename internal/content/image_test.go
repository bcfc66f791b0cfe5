package content

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Asset
		wantErr bool
	}{
		{"jpg", "image-abc123-1200x800-jpg", Asset{ID: "abc123", Width: 1200, Height: 800, Format: "jpg"}, false},
		{"hyphenated id", "image-ab-cd-10x20-png", Asset{ID: "ab-cd", Width: 10, Height: 20, Format: "png"}, false},
		{"file ref", "file-abc-pdf", Asset{}, true},
		{"bad dims", "image-abc-wide-jpg", Asset{}, true},
		{"empty", "", Asset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAssetRef(tt.ref)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidAssetRef))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImageBuilder_URL(t *testing.T) {
	b := NewImageBuilder("4ggmuz20", "production")

	got, err := b.URL("image-abc123-1200x800-jpg", ImageOptions{Width: 600, Quality: 80})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.sanity.io/images/4ggmuz20/production/abc123-1200x800.jpg?q=80&w=600", got)

	got, err = b.URL("image-abc123-1200x800-jpg", ImageOptions{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.sanity.io/images/4ggmuz20/production/abc123-1200x800.jpg", got)

	_, err = b.URL("not-an-image", ImageOptions{Width: 600})
	assert.Error(t, err)
}
