package testutils

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

// NewTestImage returns a png encoded image filled with a single colour.
func NewTestImage(t *testing.T, width, height int) []byte {
	t.Helper()

	img := imaging.New(width, height, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	buffer := bytes.Buffer{}
	if err := imaging.Encode(&buffer, img, imaging.PNG); err != nil {
		t.Fatalf("cannot encode test image: %v", err)
	}

	return buffer.Bytes()
}

// NewTestImageOf returns the decoded image of given size.
func NewTestImageOf(width, height int) image.Image {
	return imaging.New(width, height, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
}
