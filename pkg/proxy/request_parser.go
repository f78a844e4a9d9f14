package proxy

import (
	"fmt"
	"image"
	"net/url"
	"strconv"

	"github.com/jmgilman/go/errors"
	"github.com/thebartekbanach/imgpipe/pkg/processor"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

var (
	ErrURLParamNotIncluded   = errors.New(errors.CodeInvalidInput, "url param not included")
	ErrOperationNotSupported = errors.New(errors.CodeInvalidInput, "operation not supported")
	ErrInvalidParam          = errors.New(errors.CodeInvalidInput, "invalid param value")
)

var supportedOperations = []string{
	"/",
	"/original",
	"/resize",
	"/fit",
	"/fill",
	"/crop",
}

// ParseRequest maps a request path like /resize?url=...&w=100&blur=2
// to a pipeline request. The path selects the geometry operation, the
// remaining params add steps which are always applied in the same
// order, so param order never changes the cache keys.
func ParseRequest(requestPath string) (request.Request, error) {
	info, err := url.Parse(requestPath)
	if err != nil {
		return request.Request{}, err
	}

	query := info.Query()
	if !query.Has("url") || query.Get("url") == "" {
		return request.Request{}, ErrURLParamNotIncluded
	}

	if !isOperationSupported(info.Path) {
		return request.Request{}, ErrOperationNotSupported
	}

	steps, err := parseSteps(info.Path, query)
	if err != nil {
		return request.Request{}, err
	}

	r := request.New(query.Get("url"), steps...)

	if id := query.Get("id"); id != "" {
		r = r.WithImageID(id)
	}

	if r.Options.MaxPixelSize, err = intParam(query, "max"); err != nil {
		return request.Request{}, err
	}

	switch query.Get("cache") {
	case "":
	case "reload":
		r = r.WithPolicy(request.CachePolicyReloadIgnoringCachedData)
	case "only":
		r = r.WithPolicy(request.CachePolicyReturnCacheDataDontLoad)
	default:
		return request.Request{}, fmt.Errorf("%w: cache", ErrInvalidParam)
	}

	return r, nil
}

func parseSteps(operation string, query url.Values) ([]processor.Processor, error) {
	steps := []processor.Processor{}

	geometry, err := parseGeometry(operation, query)
	if err != nil {
		return nil, err
	}

	if geometry != nil {
		steps = append(steps, geometry)
	}

	if query.Has("blur") {
		radius, err := floatParam(query, "blur")
		if err != nil {
			return nil, err
		}

		steps = append(steps, processor.GaussianBlur{Radius: radius})
	}

	if query.Has("sharpen") {
		steps = append(steps, processor.Sharpen{})
	}

	if query.Has("brightness") {
		change, err := floatParam(query, "brightness")
		if err != nil {
			return nil, err
		}

		steps = append(steps, processor.Brightness{Change: change})
	}

	if query.Has("grayscale") {
		steps = append(steps, processor.Grayscale{})
	}

	if query.Has("background") {
		steps = append(steps, processor.Background{Color: query.Get("background")})
	}

	return steps, nil
}

func parseGeometry(operation string, query url.Values) (processor.Processor, error) {
	if operation == "/" || operation == "/original" {
		return nil, nil
	}

	width, err := intParam(query, "w")
	if err != nil {
		return nil, err
	}

	height, err := intParam(query, "h")
	if err != nil {
		return nil, err
	}

	switch operation {
	case "/resize":
		if width == 0 && height == 0 {
			return nil, fmt.Errorf("%w: w or h is required", ErrInvalidParam)
		}

		return processor.Resize{Width: width, Height: height}, nil

	case "/fit":
		return processor.Fit{Width: width, Height: height}, nil

	case "/fill":
		return processor.Fill{Width: width, Height: height}, nil

	default:
		x, err := intParam(query, "x")
		if err != nil {
			return nil, err
		}

		y, err := intParam(query, "y")
		if err != nil {
			return nil, err
		}

		return processor.Crop{Rect: image.Rect(x, y, x+width, y+height)}, nil
	}
}

// intParam returns zero for a missing param, negative values are rejected.
func intParam(query url.Values, name string) (int, error) {
	if !query.Has(name) {
		return 0, nil
	}

	value, err := strconv.Atoi(query.Get(name))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParam, name)
	}

	return value, nil
}

func floatParam(query url.Values, name string) (float64, error) {
	value, err := strconv.ParseFloat(query.Get(name), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidParam, name)
	}

	return value, nil
}

func isOperationSupported(operation string) bool {
	for _, supportedOperation := range supportedOperations {
		if supportedOperation == operation {
			return true
		}
	}

	return false
}
