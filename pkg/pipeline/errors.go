package pipeline

import (
	"github.com/jmgilman/go/errors"
)

const (
	CodeDataLoadingFailed  errors.ErrorCode = "DATA_LOADING_FAILED"
	CodeDecodingFailed     errors.ErrorCode = "DECODING_FAILED"
	CodeProcessingFailed   errors.ErrorCode = "PROCESSING_FAILED"
	CodeCancelled          errors.ErrorCode = "CANCELLED"
	CodeDataMissingInCache errors.ErrorCode = "DATA_MISSING_IN_CACHE"
)

const (
	stageFetch   = "fetch"
	stageDecode  = "decode"
	stageProcess = "process"
	stageCache   = "cache"
)

var (
	ErrCancelled          = errors.New(CodeCancelled, "image task cancelled")
	ErrDataMissingInCache = errors.New(CodeDataMissingInCache, "image data is not cached and loading is not allowed")
	ErrPipelineClosed     = errors.New(CodeCancelled, "pipeline closed")
)

// stageError wraps the cause of a failed stage, the cause stays
// reachable through errors.Is and errors.As.
func stageError(err error, code errors.ErrorCode, stage, url string) error {
	return errors.WrapWithContext(err, code, stage+" failed", map[string]interface{}{
		"stage": stage,
		"url":   url,
	})
}
