package proxy

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/ryanuber/go-glob"
	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/decoder"
	"github.com/thebartekbanach/imgpipe/pkg/fetcher"
	"github.com/thebartekbanach/imgpipe/pkg/pipeline"
	"github.com/thebartekbanach/imgpipe/pkg/request"
)

type ProxyServiceConfig struct {
	AllowedDomains []string
	AllowedOrigins []string
}

type proxyService struct {
	config  ProxyServiceConfig
	loader  ImageLoader
	encoder decoder.Encoder
	metrics *Metrics
	log     *logrus.Entry
}

var _ ProxyService = (*proxyService)(nil)

var (
	ErrOriginNotAllowed = errors.New(errors.CodeForbidden, "request origin not allowed")
	ErrDomainNotAllowed = errors.New(errors.CodeForbidden, "source image domain not allowed")
)

// NewProxyService creates the proxy, metrics may be nil.
func NewProxyService(config ProxyServiceConfig, loader ImageLoader, encoder decoder.Codec, metrics *Metrics, log *logrus.Entry) ProxyService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &proxyService{
		config:  config,
		loader:  loader,
		encoder: encoder,
		metrics: metrics,
		log:     log,
	}
}

func (p *proxyService) Handle(ctx context.Context, rawRequestPath, callerOrigin string, responseWriter ProxyResponseWriter) {
	observed := &observedResponseWriter{ProxyResponseWriter: responseWriter}
	defer p.metrics.observe(observed, time.Now())

	p.handle(ctx, rawRequestPath, callerOrigin, observed)
}

func (p *proxyService) handle(ctx context.Context, rawRequestPath, callerOrigin string, responseWriter ProxyResponseWriter) {
	if !p.isAllowedOrigin(callerOrigin) {
		responseWriter.WriteError(http.StatusForbidden, errors.ToJSON(ErrOriginNotAllowed))
		return
	}

	r, err := ParseRequest(rawRequestPath)
	if err != nil {
		responseWriter.WriteError(http.StatusBadRequest, errors.ToJSON(errors.Wrap(err, errors.CodeInvalidInput, "request parsing error")))
		return
	}

	if !p.isAllowedImageSourceDomain(r.URL) {
		responseWriter.WriteError(http.StatusForbidden, errors.ToJSON(ErrDomainNotAllowed))
		return
	}

	result, err := p.loader.LoadImage(r, nil).Wait(ctx)
	if err != nil {
		p.writeFailure(ctx, r, err, responseWriter)
		return
	}

	data, err := p.encoder.Encode(ctx, result.Container)
	if err != nil {
		p.log.WithError(err).WithField("url", r.URL).Warn("image encoding failed")
		responseWriter.WriteError(http.StatusInternalServerError, errors.ToJSON(errors.Wrap(err, errors.CodeExecutionFailed, "image encoding failed")))
		return
	}

	responseWriter.WriteOK(http.DetectContentType(data), data)
}

func (p *proxyService) writeFailure(ctx context.Context, r request.Request, err error, responseWriter ProxyResponseWriter) {
	p.log.WithError(err).WithField("url", r.URL).Info("image request failed")

	if errors.GetCode(err) == pipeline.CodeProcessingFailed {
		original := r
		original.Processors = nil

		if result, fallbackErr := p.loader.LoadImage(original, nil).Wait(ctx); fallbackErr == nil {
			if data, encodeErr := p.encoder.Encode(ctx, result.Container); encodeErr == nil {
				responseWriter.WriteErrorWithFallback(errors.ToJSON(err), http.DetectContentType(data), data)
				return
			}
		}
	}

	responseWriter.WriteError(statusOf(err), errors.ToJSON(err))
}

func statusOf(err error) int {
	switch errors.GetCode(err) {
	case pipeline.CodeDataLoadingFailed:
		if errors.Is(err, fetcher.ErrResponseStatus404) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case pipeline.CodeDataMissingInCache:
		return http.StatusNotFound
	case pipeline.CodeDecodingFailed:
		return http.StatusUnprocessableEntity
	case pipeline.CodeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (p *proxyService) isAllowedOrigin(origin string) bool {
	if len(p.config.AllowedOrigins) == 0 {
		return true
	}

	for _, allowedOrigin := range p.config.AllowedOrigins {
		if glob.Glob(allowedOrigin, origin) {
			return true
		}
	}

	return false
}

func (p *proxyService) isAllowedImageSourceDomain(sourceImageURL string) bool {
	if len(p.config.AllowedDomains) == 0 {
		return true
	}

	url, err := url.Parse(sourceImageURL)
	if err != nil {
		return false
	}

	sourceImageDomain := url.Hostname()
	for _, allowedDomain := range p.config.AllowedDomains {
		if glob.Glob(allowedDomain, sourceImageDomain) {
			return true
		}
	}

	return false
}
