package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// DefaultIconSizes are the square icon sizes listed in the web manifest.
var DefaultIconSizes = []int{192, 512}

// DecodeIconSource decodes the image icons are generated from. EXIF
// orientation is applied.
func DecodeIconSource(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode icon source: %w", err)
	}
	return img, nil
}

// GenerateIcons scales src into square PNG icons, one per size. The image
// keeps its aspect ratio and is centered on a background-filled canvas.
func GenerateIcons(src image.Image, sizes []int, background color.Color) (map[int][]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("generate icons: no source image")
	}

	icons := make(map[int][]byte, len(sizes))
	for _, size := range sizes {
		if size <= 0 {
			return nil, fmt.Errorf("generate icons: invalid size %d", size)
		}

		fitted := imaging.Fit(src, size, size, imaging.Lanczos)
		canvas := imaging.New(size, size, background)
		canvas = imaging.PasteCenter(canvas, fitted)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode %dpx icon: %w", size, err)
		}
		icons[size] = buf.Bytes()
	}
	return icons, nil
}

// ParseHexColor parses "#rrggbb" or "#rgb". An empty string is transparent.
func ParseHexColor(s string) (color.NRGBA, error) {
	if s == "" {
		return color.NRGBA{}, nil
	}
	c := color.NRGBA{A: 0xff}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
	case 4:
		_, err = fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		c.R *= 17
		c.G *= 17
		c.B *= 17
	default:
		err = fmt.Errorf("want #rgb or #rrggbb")
	}
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return c, nil
}
