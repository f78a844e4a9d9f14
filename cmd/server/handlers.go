package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/thebartekbanach/imgpipe/pkg/cache/invalidation"
	"github.com/thebartekbanach/imgpipe/pkg/proxy"
)

func handleRequest(proxyService proxy.ProxyService, log *logrus.Entry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		processingCtx, cancel := context.WithTimeout(r.Context(), time.Minute)
		defer cancel()

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		request := r.URL.Path + "?" + r.URL.RawQuery
		log.WithField("request", request).Debug("processing")

		proxyService.Handle(processingCtx, request, r.Header.Get("Origin"), &proxyResponseWriter{w, log})
		r.Body.Close()
	}
}

func handleInvalidationRequest(ctx context.Context, invalidationService invalidation.Service, log *logrus.Entry) http.HandlerFunc {
	rawAccessToken := os.Getenv("IMGPIPE_INVALIDATE_SECURITY_TOKEN")
	accessToken := fmt.Sprintf("Bearer %s", rawAccessToken)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if r.Method != http.MethodDelete {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only DELETE method is allowed"))
			return
		}

		if rawAccessToken != "" && r.Header.Get("Authorization") != accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("access token authorization failed"))
			return
		}

		projectName := r.URL.Query().Get("projectName")
		if projectName == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("projectName query parameter is required"))
			return
		}

		latestCommitHash := r.URL.Query().Get("latestCommitHash")
		if latestCommitHash == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("latestCommitHash query parameter is required"))
			return
		}

		urls := r.URL.Query()["urls"]
		if len(urls) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("urls query parameter is required"))
			return
		}

		result, invalidationErr := invalidationService.Invalidate(ctx, projectName, latestCommitHash, urls)
		jsonResult, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			log.WithError(marshalErr).Error("error ocurred when marshalling invalidated entries")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("error ocurred when marshalling invalidated entries"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if invalidationErr != nil {
			log.WithError(invalidationErr).Error("error ocurred when invalidating")
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		w.Write(jsonResult)
	}
}

func handleLatestInvalidationInfoRequest(ctx context.Context, invalidationService invalidation.Service, log *logrus.Entry) http.HandlerFunc {
	rawAccessToken := os.Getenv("IMGPIPE_INVALIDATE_SECURITY_TOKEN")
	accessToken := fmt.Sprintf("Bearer %s", rawAccessToken)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			w.Write([]byte("only GET method is allowed"))
			return
		}

		if rawAccessToken != "" && r.Header.Get("Authorization") != accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("access token authorization failed"))
			return
		}

		projectName := r.URL.Query().Get("projectName")
		if projectName == "" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("projectName query parameter is required"))
			return
		}

		result, infoGetErr := invalidationService.GetLastKnownInvalidation(ctx, projectName)
		jsonResult, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			log.WithError(marshalErr).Error("error ocurred when marshalling invalidation info")
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("error ocurred when marshalling invalidation info"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if infoGetErr != nil {
			log.WithError(infoGetErr).Error("error ocurred when getting last known invalidation")
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}

		w.Write(jsonResult)
	}
}
