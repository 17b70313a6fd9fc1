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

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/duplicates"
	"github.com/weaviate/olapcore/entities/aggregation"
)

type aggregator interface {
	Aggregate(ctx context.Context, params *aggregation.Params) (*aggregation.Result, error)
}

type duplicatesFinder interface {
	Find(ctx context.Context, class string) (*duplicates.Result, error)
}

type aggregateHandlers struct {
	aggregator aggregator
	duplicates duplicatesFinder
	logger     logrus.FieldLogger
}

func (h *aggregateHandlers) aggregate(w http.ResponseWriter, r *http.Request) {
	class := mux.Vars(r)["class"]
	logger := loggerFromContext(r.Context(), h.logger).
		WithField("action", "restapi_aggregate").
		WithField("class", class)

	params, err := aggregation.ParseParams(class, r.URL.Query())
	if err != nil {
		logger.WithError(err).Debug("invalid aggregation request")
		writeJSON(w, http.StatusBadRequest, errPayloadFromMultiErr(err))
		return
	}

	res, err := h.aggregator.Aggregate(r.Context(), params)
	if err != nil {
		status, payload := statusFor(err)
		logRequestError(logger, status, err)
		writeJSON(w, status, payload)
		return
	}

	writeJSON(w, http.StatusOK, renderResult(res))
}

func (h *aggregateHandlers) findDuplicates(w http.ResponseWriter, r *http.Request) {
	class := mux.Vars(r)["class"]
	logger := loggerFromContext(r.Context(), h.logger).
		WithField("action", "restapi_duplicates").
		WithField("class", class)

	res, err := h.duplicates.Find(r.Context(), class)
	if err != nil {
		status, payload := statusFor(err)
		logRequestError(logger, status, err)
		writeJSON(w, status, payload)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func logRequestError(logger logrus.FieldLogger, status int, err error) {
	if status < http.StatusInternalServerError {
		logger.WithError(err).Debug("request failed")
		return
	}
	logger.WithError(err).Error("request failed")
}

func setupAggregateHandlers(router *mux.Router, agg aggregator, finder duplicatesFinder,
	logger logrus.FieldLogger,
) {
	h := &aggregateHandlers{aggregator: agg, duplicates: finder, logger: logger}
	router.HandleFunc("/v1/aggregate/{class}", h.aggregate).Methods(http.MethodGet)
	router.HandleFunc("/v1/duplicates/{class}", h.findDuplicates).Methods(http.MethodGet)
}
