package decoder

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	. "github.com/franela/goblin"
)

func encodePNG(g *G, width, height int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		img.Set(x, 0, color.NRGBA{255, 0, 0, 255})
	}

	buffer := bytes.Buffer{}
	if err := png.Encode(&buffer, img); err != nil {
		g.Fail(err)
	}

	return buffer.Bytes()
}

func TestImagingCodec(t *testing.T) {
	g := Goblin(t)

	g.Describe("ImagingCodec", func() {
		g.It("Should decode image and remember its format", func() {
			codec := NewImagingCodec(DefaultImagingCodecConfig())

			container, err := codec.Decode(context.Background(), encodePNG(g, 20, 10), DecodeOptions{})

			g.Assert(err).IsNil()
			g.Assert(container.Format).Equal("png")
			g.Assert(container.Image.Bounds().Dx()).Equal(20)
			g.Assert(container.Cost()).Equal(int64(20 * 10 * 4))
		})

		g.It("Should downsample to max pixel size", func() {
			codec := NewImagingCodec(DefaultImagingCodecConfig())

			container, err := codec.Decode(context.Background(), encodePNG(g, 40, 20), DecodeOptions{MaxPixelSize: 10})

			g.Assert(err).IsNil()
			g.Assert(container.Image.Bounds().Dx()).Equal(10)
			g.Assert(container.Image.Bounds().Dy()).Equal(5)
		})

		g.It("Should fail on empty or corrupted data", func() {
			codec := NewImagingCodec(DefaultImagingCodecConfig())

			_, err := codec.Decode(context.Background(), nil, DecodeOptions{})
			g.Assert(err).Equal(ErrEmptyData)

			_, err = codec.Decode(context.Background(), []byte("definitely not an image"), DecodeOptions{})
			g.Assert(err == nil).IsFalse()
		})

		g.It("Should not decode when context is already cancelled", func() {
			codec := NewImagingCodec(DefaultImagingCodecConfig())
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := codec.Decode(ctx, encodePNG(g, 2, 2), DecodeOptions{})
			g.Assert(err).Equal(context.Canceled)
		})

		g.It("Should encode in container format and fall back to default one", func() {
			codec := NewImagingCodec(DefaultImagingCodecConfig())
			img := image.NewNRGBA(image.Rect(0, 0, 3, 3))

			data, err := codec.Encode(context.Background(), ImageContainer{Image: img, Format: "png"})
			g.Assert(err).IsNil()
			_, format, _ := image.DecodeConfig(bytes.NewReader(data))
			g.Assert(format).Equal("png")

			data, err = codec.Encode(context.Background(), ImageContainer{Image: img})
			g.Assert(err).IsNil()
			_, format, _ = image.DecodeConfig(bytes.NewReader(data))
			g.Assert(format).Equal("jpeg")

			_, err = codec.Encode(context.Background(), ImageContainer{})
			g.Assert(err).Equal(ErrNothingToSave)
		})
	})
}
