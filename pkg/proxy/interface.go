package proxy

import (
	"context"

	"github.com/jmgilman/go/errors"
	"github.com/thebartekbanach/imgpipe/pkg/pipeline"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

type ProxyResponseWriter interface {
	WriteOK(contentType string, data []byte)
	WriteError(code int, response *errors.ErrorResponse)

	// WriteErrorWithFallback serves the unprocessed source image
	// when only the processing of the requested one failed.
	WriteErrorWithFallback(response *errors.ErrorResponse, contentType string, fallbackImage []byte)
}

type ProxyService interface {
	Handle(ctx context.Context, requestPath, callerOrigin string, responseWriter ProxyResponseWriter)
}

// ImageLoader is the part of the pipeline the proxy depends on.
type ImageLoader interface {
	LoadImage(r request.Request, onProgress pipeline.ProgressFunc) *pipeline.ImageTask
}
