package processor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	. "github.com/franela/goblin"
)

func newTestImage(width, height int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.NRGBA{uint8(x), uint8(y), 128, 255})
		}
	}

	return img
}

func recordingStep(id string, order *[]string) Processor {
	return NewFunc(id, func(img image.Image) (image.Image, error) {
		*order = append(*order, id)
		return img, nil
	})
}

func TestProcessor(t *testing.T) {
	g := Goblin(t)

	g.Describe("Apply", func() {
		g.It("Should apply processors in the listed order", func() {
			order := []string{}
			steps := []Processor{recordingStep("a", &order), recordingStep("b", &order), recordingStep("c", &order)}

			_, err := Apply(context.Background(), steps, newTestImage(4, 4))

			g.Assert(err).IsNil()
			g.Assert(order).Equal([]string{"a", "b", "c"})
		})

		g.It("Should stop before next step when context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			order := []string{}
			steps := []Processor{
				NewFunc("cancel", func(img image.Image) (image.Image, error) {
					cancel()
					return img, nil
				}),
				recordingStep("never", &order),
			}

			_, err := Apply(ctx, steps, newTestImage(4, 4))

			g.Assert(errors.Is(err, context.Canceled)).IsTrue()
			g.Assert(len(order)).Equal(0)
		})

		g.It("Should wrap step failure with its identifier", func() {
			failure := errors.New("boom")
			steps := []Processor{NewFunc("broken", func(img image.Image) (image.Image, error) {
				return nil, failure
			})}

			_, err := Apply(context.Background(), steps, newTestImage(4, 4))

			g.Assert(errors.Is(err, failure)).IsTrue()
			g.Assert(err.Error()).Equal("broken: boom")
		})

		g.It("Should reject step returning no image", func() {
			steps := []Processor{NewFunc("empty", func(img image.Image) (image.Image, error) {
				return nil, nil
			})}

			_, err := Apply(context.Background(), steps, newTestImage(4, 4))

			g.Assert(errors.Is(err, ErrEmptyOutput)).IsTrue()
		})
	})

	g.Describe("Steps", func() {
		g.It("Should resize to requested dimensions", func() {
			out, err := Resize{Width: 8, Height: 2}.Process(newTestImage(16, 16))

			g.Assert(err).IsNil()
			g.Assert(out.Bounds().Dx()).Equal(8)
			g.Assert(out.Bounds().Dy()).Equal(2)
		})

		g.It("Should keep aspect ratio when fitting", func() {
			out, err := Fit{Width: 10, Height: 10}.Process(newTestImage(40, 20))

			g.Assert(err).IsNil()
			g.Assert(out.Bounds().Dx()).Equal(10)
			g.Assert(out.Bounds().Dy()).Equal(5)
		})

		g.It("Should fill exact dimensions", func() {
			out, err := Fill{Width: 6, Height: 6}.Process(newTestImage(40, 20))

			g.Assert(err).IsNil()
			g.Assert(out.Bounds().Dx()).Equal(6)
			g.Assert(out.Bounds().Dy()).Equal(6)
		})

		g.It("Should crop requested rectangle", func() {
			out, err := Crop{image.Rect(2, 2, 6, 5)}.Process(newTestImage(10, 10))

			g.Assert(err).IsNil()
			g.Assert(out.Bounds().Dx()).Equal(4)
			g.Assert(out.Bounds().Dy()).Equal(3)
		})

		g.It("Should reject invalid parameters", func() {
			img := newTestImage(10, 10)
			invalid := []Processor{
				Resize{},
				Fit{Width: -1, Height: 3},
				Fill{},
				Crop{image.Rect(20, 20, 30, 30)},
				GaussianBlur{},
				Brightness{Change: 2},
				Background{Color: "not-a-color"},
			}

			for _, proc := range invalid {
				_, err := proc.Process(img)
				g.Assert(errors.Is(err, ErrInvalidParameters)).IsTrue(proc.Identifier())
			}
		})

		g.It("Should produce grayscale pixels", func() {
			out, _ := Grayscale{}.Process(newTestImage(4, 4))
			r, gr, b, _ := out.At(3, 1).RGBA()

			g.Assert(r == gr && gr == b).IsTrue()
		})

		g.It("Should flatten transparency onto background color", func() {
			img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
			out, err := Background{Color: "#ff0000"}.Process(img)

			g.Assert(err).IsNil()
			r, gr, b, a := out.At(0, 0).RGBA()
			g.Assert([]uint32{r >> 8, gr >> 8, b >> 8, a >> 8}).Equal([]uint32{255, 0, 0, 255})
		})

		g.It("Should keep dimensions for filters", func() {
			img := newTestImage(12, 7)
			for _, proc := range []Processor{GaussianBlur{Radius: 2}, Sharpen{}, Brightness{Change: 0.3}} {
				out, err := proc.Process(img)
				g.Assert(err).IsNil()
				g.Assert(out.Bounds().Size()).Equal(img.Bounds().Size())
			}
		})

		g.It("Should include every parameter in identifiers", func() {
			g.Assert(Resize{1, 2}.Identifier() != Resize{2, 1}.Identifier()).IsTrue()
			g.Assert(GaussianBlur{1.5}.Identifier()).Equal("blur(r=1.5)")
			g.Assert(Identifiers([]Processor{Grayscale{}, Fit{3, 4}})).Equal("grayscale|fit(w=3,h=4)")
			g.Assert(Identifiers(nil)).Equal("")
		})
	})
}
