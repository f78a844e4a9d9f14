package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/jmgilman/go/errors"
)

type httpGetFunc func(ctx context.Context, url string) (resp *http.Response, err error)

type HTTPLoaderConfig struct {
	Client *http.Client

	// MaxBodySize limits downloaded bytes, zero means unlimited.
	MaxBodySize int64

	// AllowFileScheme enables loading file:// urls from the local disk.
	AllowFileScheme bool

	ChunkSize int
}

func DefaultHTTPLoaderConfig() HTTPLoaderConfig {
	return HTTPLoaderConfig{
		Client:      http.DefaultClient,
		MaxBodySize: 64 * 1024 * 1024,
		ChunkSize:   32 * 1024,
	}
}

type HTTPLoader struct {
	config HTTPLoaderConfig
	getter httpGetFunc
}

var _ DataLoader = (*HTTPLoader)(nil)

func NewHTTPLoader(config HTTPLoaderConfig) *HTTPLoader {
	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	if config.ChunkSize <= 0 {
		config.ChunkSize = 32 * 1024
	}

	client := config.Client
	getFunc := func(ctx context.Context, url string) (resp *http.Response, err error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		return client.Do(req)
	}

	return &HTTPLoader{config, getFunc}
}

func (loader *HTTPLoader) Fetch(ctx context.Context, rawURL string, onProgress ProgressFunc) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid image url")
	}

	switch parsed.Scheme {
	case "http", "https":
	case "file":
		if loader.config.AllowFileScheme {
			return loader.fetchFile(ctx, parsed.Path, onProgress)
		}
		return nil, ErrSchemeNotAllowed
	default:
		return nil, ErrSchemeNotAllowed
	}

	response, err := loader.getter(ctx, rawURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, errors.Wrap(err, errors.CodeNetwork, "cannot reach image source")
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound {
		return nil, ErrResponseStatus404
	} else if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrResponseStatusNotOK, response.StatusCode)
	}

	total := response.ContentLength
	if loader.config.MaxBodySize > 0 && total > loader.config.MaxBodySize {
		return nil, ErrResponseTooLarge
	}

	data, err := loader.readAll(ctx, response.Body, total, onProgress)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, err
	}

	return data, nil
}

func (loader *HTTPLoader) fetchFile(ctx context.Context, path string, onProgress ProgressFunc) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	total := int64(-1)
	if info, err := file.Stat(); err == nil {
		total = info.Size()
	}

	return loader.readAll(ctx, file, total, onProgress)
}

func (loader *HTTPLoader) readAll(ctx context.Context, reader io.Reader, total int64, onProgress ProgressFunc) ([]byte, error) {
	data := make([]byte, 0, initialCapacity(total, loader.config.MaxBodySize))
	chunk := make([]byte, loader.config.ChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := reader.Read(chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
			if loader.config.MaxBodySize > 0 && int64(len(data)) > loader.config.MaxBodySize {
				return nil, ErrResponseTooLarge
			}

			if onProgress != nil {
				onProgress(int64(len(data)), total)
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeNetwork, "cannot read image data")
		}
	}

	if len(data) == 0 {
		return nil, ErrEmptyResponse
	}

	return data, nil
}

func initialCapacity(total, limit int64) int64 {
	if total <= 0 {
		return 0
	}

	if limit > 0 && total > limit {
		return limit
	}

	return total
}
