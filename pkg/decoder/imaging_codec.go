package decoder

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
)

type ImagingCodecConfig struct {
	// DefaultFormat is used for containers without a known format.
	DefaultFormat imaging.Format
	JPEGQuality   int
}

func DefaultImagingCodecConfig() ImagingCodecConfig {
	return ImagingCodecConfig{
		DefaultFormat: imaging.JPEG,
		JPEGQuality:   90,
	}
}

type imagingCodec struct {
	config ImagingCodecConfig
}

var _ Codec = (*imagingCodec)(nil)

func NewImagingCodec(config ImagingCodecConfig) Codec {
	if config.JPEGQuality <= 0 || config.JPEGQuality > 100 {
		config.JPEGQuality = DefaultImagingCodecConfig().JPEGQuality
	}

	return &imagingCodec{config}
}

func (c *imagingCodec) Decode(ctx context.Context, data []byte, options DecodeOptions) (ImageContainer, error) {
	if len(data) == 0 {
		return ImageContainer{}, ErrEmptyData
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageContainer{}, err
	}

	if err := ctx.Err(); err != nil {
		return ImageContainer{}, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return ImageContainer{}, err
	}

	if max := options.MaxPixelSize; max > 0 {
		size := img.Bounds().Size()
		if size.X > max || size.Y > max {
			img = imaging.Fit(img, max, max, imaging.Lanczos)
		}
	}

	return ImageContainer{Image: img, Format: format}, nil
}

func (c *imagingCodec) Encode(ctx context.Context, container ImageContainer) ([]byte, error) {
	if container.Image == nil {
		return nil, ErrNothingToSave
	}

	format, err := imaging.FormatFromExtension(container.Format)
	if err != nil {
		format = c.config.DefaultFormat
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buffer := bytes.Buffer{}
	if err := imaging.Encode(&buffer, container.Image, format, imaging.JPEGQuality(c.config.JPEGQuality)); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}
