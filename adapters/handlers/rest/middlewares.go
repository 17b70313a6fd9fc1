//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/usecases/config"
)

const requestIDHeader = "X-Request-Id"

type loggerKey struct{}

// setupGlobalMiddleware wraps the router. It runs before routing, so it also
// applies to the metrics endpoint.
func setupGlobalMiddleware(handler http.Handler, corsConfig config.CORS, logger logrus.FieldLogger) http.Handler {
	handleCORS := cors.New(cors.Options{
		AllowedOrigins: splitList(corsConfig.AllowOrigin),
		AllowedMethods: splitList(corsConfig.AllowMethods),
		AllowedHeaders: splitList(corsConfig.AllowHeaders),
		ExposedHeaders: []string{requestIDHeader},
	}).Handler
	handler = handleCORS(handler)

	return addLogging(logger, handler)
}

// addLogging tags every request with an id, taken from the request header
// if the client sent one, and stores a logger carrying it in the context.
func addLogging(logger logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		reqLogger := logger.WithField("request_id", id)
		reqLogger.WithField("action", "restapi_request").
			WithField("method", r.Method).
			WithField("url", r.URL.String()).
			Debug("received HTTP request")

		ctx := context.WithValue(r.Context(), loggerKey{}, reqLogger)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggerFromContext(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if logger, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok {
		return logger
	}
	return fallback
}

func splitList(in string) []string {
	var out []string
	for _, item := range strings.Split(in, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
