package fetcher

import (
	"context"
	"errors"
)

// ProgressFunc reports downloaded bytes. total is -1 when unknown.
type ProgressFunc func(completed, total int64)

// DataLoader fetches raw image bytes. Fetch must return promptly
// once ctx is cancelled.
type DataLoader interface {
	Fetch(ctx context.Context, url string, onProgress ProgressFunc) ([]byte, error)
}

var (
	ErrResponseStatusNotOK = errors.New("response returned non-200 status code")
	ErrResponseStatus404   = errors.New("response returned 404 status code")
	ErrResponseTooLarge    = errors.New("response body exceeds size limit")
	ErrEmptyResponse       = errors.New("response body is empty")
	ErrSchemeNotAllowed    = errors.New("url scheme is not allowed")
)
