package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter(t *testing.T) {
	r := NewRouter("")
	assert.Equal(t, GalleryPath, r.String())
	assert.Empty(t, r.Selected())

	require.NoError(t, r.Push(SelectionURL("red fox")))
	assert.Equal(t, "red fox", r.Selected())
	assert.Equal(t, "/gallery?sketch=red+fox", r.String())

	require.NoError(t, r.Replace(GalleryPath))
	assert.Empty(t, r.Selected())
	assert.Equal(t, []string{"/gallery", "/gallery?sketch=red+fox"}, r.History())

	assert.Error(t, r.Push("%zz"))
}

func TestSelectionURL(t *testing.T) {
	assert.Equal(t, GalleryPath, SelectionURL(""))
	assert.Equal(t, "/gallery?sketch=fox", SelectionURL("fox"))
}

func TestIsGalleryURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"/gallery", true},
		{"/gallery?sketch=fox", true},
		{"/gallery/", false},
		{"/gallerywhatever", false},
		{"/gallerywhatever?sketch=fox", false},
		{"https://evil.example/gallery", false},
		{"//evil.example/gallery", false},
		{"", false},
		{"%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGalleryURL(tt.url))
		})
	}
}
