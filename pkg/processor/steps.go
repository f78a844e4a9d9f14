package processor

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Resize scales the image to exactly Width x Height. A zero dimension
// is computed from the other one, preserving the aspect ratio.
type Resize struct {
	Width, Height int
}

func (p Resize) Identifier() string {
	return fmt.Sprintf("resize(w=%d,h=%d)", p.Width, p.Height)
}

func (p Resize) Process(img image.Image) (image.Image, error) {
	if p.Width < 0 || p.Height < 0 || (p.Width == 0 && p.Height == 0) {
		return nil, ErrInvalidParameters
	}

	return imaging.Resize(img, p.Width, p.Height, imaging.Lanczos), nil
}

// Fit downscales the image to fit into Width x Height,
// smaller images are left untouched.
type Fit struct {
	Width, Height int
}

func (p Fit) Identifier() string {
	return fmt.Sprintf("fit(w=%d,h=%d)", p.Width, p.Height)
}

func (p Fit) Process(img image.Image) (image.Image, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, ErrInvalidParameters
	}

	return imaging.Fit(img, p.Width, p.Height, imaging.Lanczos), nil
}

// Fill scales and crops the image around its center to cover
// exactly Width x Height.
type Fill struct {
	Width, Height int
}

func (p Fill) Identifier() string {
	return fmt.Sprintf("fill(w=%d,h=%d)", p.Width, p.Height)
}

func (p Fill) Process(img image.Image) (image.Image, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, ErrInvalidParameters
	}

	return imaging.Fill(img, p.Width, p.Height, imaging.Center, imaging.Lanczos), nil
}

type Crop struct {
	Rect image.Rectangle
}

func (p Crop) Identifier() string {
	return fmt.Sprintf("crop(%d,%d,%d,%d)", p.Rect.Min.X, p.Rect.Min.Y, p.Rect.Max.X, p.Rect.Max.Y)
}

func (p Crop) Process(img image.Image) (image.Image, error) {
	if p.Rect.Empty() || !p.Rect.Overlaps(img.Bounds()) {
		return nil, ErrInvalidParameters
	}

	return imaging.Crop(img, p.Rect), nil
}

type Grayscale struct{}

func (Grayscale) Identifier() string {
	return "grayscale"
}

func (Grayscale) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type GaussianBlur struct {
	Radius float64
}

func (p GaussianBlur) Identifier() string {
	return fmt.Sprintf("blur(r=%g)", p.Radius)
}

func (p GaussianBlur) Process(img image.Image) (image.Image, error) {
	if p.Radius <= 0 {
		return nil, ErrInvalidParameters
	}

	return blur.Gaussian(img, p.Radius), nil
}

type Sharpen struct{}

func (Sharpen) Identifier() string {
	return "sharpen"
}

func (Sharpen) Process(img image.Image) (image.Image, error) {
	return effect.Sharpen(img), nil
}

// Brightness changes the brightness by Change, in range -1 to 1.
type Brightness struct {
	Change float64
}

func (p Brightness) Identifier() string {
	return fmt.Sprintf("brightness(%g)", p.Change)
}

func (p Brightness) Process(img image.Image) (image.Image, error) {
	if p.Change < -1 || p.Change > 1 {
		return nil, ErrInvalidParameters
	}

	return adjust.Brightness(img, p.Change), nil
}

// Background flattens transparent pixels onto a solid color
// given in hex notation, e.g. "#ffffff".
type Background struct {
	Color string
}

func (p Background) Identifier() string {
	return fmt.Sprintf("background(%s)", p.Color)
}

func (p Background) Process(img image.Image) (image.Image, error) {
	fill, err := colorful.Hex(p.Color)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), fill)
	return imaging.Overlay(background, img, image.Point{}, 1), nil
}

type funcProcessor struct {
	id      string
	process func(img image.Image) (image.Image, error)
}

// NewFunc wraps a custom transformation. The id has to change
// whenever the output of process changes.
func NewFunc(id string, process func(img image.Image) (image.Image, error)) Processor {
	return &funcProcessor{id, process}
}

func (p *funcProcessor) Identifier() string {
	return p.id
}

func (p *funcProcessor) Process(img image.Image) (image.Image, error) {
	return p.process(img)
}
