package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jmgilman/go/errors"
	"github.com/sirupsen/logrus"
)

type proxyResponseWriter struct {
	w   http.ResponseWriter
	log *logrus.Entry
}

func (w *proxyResponseWriter) WriteOK(contentType string, data []byte) {
	w.writeImage(http.StatusOK, contentType, data)
}

func (w *proxyResponseWriter) WriteError(code int, response *errors.ErrorResponse) {
	w.w.Header().Set("Content-Type", "application/json")
	w.w.WriteHeader(code)

	if err := json.NewEncoder(w.w).Encode(response); err != nil {
		w.log.WithError(err).Warn("writing error response failed")
	}
}

func (w *proxyResponseWriter) WriteErrorWithFallback(response *errors.ErrorResponse, contentType string, fallbackImage []byte) {
	w.w.Header().Set("X-Imgpipe-Error", response.Code)
	w.writeImage(http.StatusOK, contentType, fallbackImage)
}

func (w *proxyResponseWriter) writeImage(code int, contentType string, data []byte) {
	w.w.Header().Set("Content-Type", contentType)
	w.w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.w.WriteHeader(code)

	if _, err := w.w.Write(data); err != nil {
		w.log.WithError(err).Debug("writing image response failed")
	}
}
