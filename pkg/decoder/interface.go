package decoder

import (
	"context"
	"errors"
	"image"
)

// ImageContainer is a decoded image together with the format of
// the data it was decoded from.
type ImageContainer struct {
	Image  image.Image
	Format string
}

// Cost approximates the memory held by the decoded pixels.
func (c ImageContainer) Cost() int64 {
	if c.Image == nil {
		return 0
	}

	size := c.Image.Bounds().Size()
	return int64(size.X) * int64(size.Y) * 4
}

type DecodeOptions struct {
	// MaxPixelSize downsamples the result so that no dimension exceeds
	// it. Zero keeps the original size.
	MaxPixelSize int
}

type Decoder interface {
	Decode(ctx context.Context, data []byte, options DecodeOptions) (ImageContainer, error)
}

type Encoder interface {
	Encode(ctx context.Context, container ImageContainer) ([]byte, error)
}

type Codec interface {
	Decoder
	Encoder
}

var (
	ErrEmptyData     = errors.New("no data to decode")
	ErrNothingToSave = errors.New("container holds no image")
)
