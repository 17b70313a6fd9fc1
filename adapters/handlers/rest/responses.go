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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"

	"github.com/weaviate/olapcore/entities/aggregation"
	enterrors "github.com/weaviate/olapcore/entities/errors"
)

type errorMessage struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error []*errorMessage `json:"error"`
}

func errPayloadFromSingleErr(err error) *errorResponse {
	return &errorResponse{Error: []*errorMessage{{Message: err.Error()}}}
}

// errPayloadFromMultiErr lists every error of a multierror on its own.
func errPayloadFromMultiErr(err error) *errorResponse {
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		return errPayloadFromSingleErr(err)
	}
	out := &errorResponse{Error: make([]*errorMessage, len(merr.Errors))}
	for i, e := range merr.Errors {
		out.Error[i] = &errorMessage{Message: e.Error()}
	}
	return out
}

// statusFor maps errors of the aggregation layer to a status code. Retries
// exhausted on compacted segments are reported without their cause.
func statusFor(err error) (int, *errorResponse) {
	switch {
	case enterrors.IsConfiguration(err):
		return http.StatusBadRequest, errPayloadFromMultiErr(err)
	case errors.Is(err, enterrors.ErrUnableToComplete):
		return http.StatusServiceUnavailable, errPayloadFromSingleErr(enterrors.ErrUnableToComplete)
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, errPayloadFromSingleErr(err)
	default:
		return http.StatusInternalServerError, errPayloadFromSingleErr(err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// the status is sent, a failing client can not be told anymore
	_ = json.NewEncoder(w).Encode(payload)
}

// renderResult turns a result tree into its response form: metrics are
// keyed metric_<i> by position, degenerate metrics are left out.
func renderResult(res *aggregation.Result) map[string]interface{} {
	out := map[string]interface{}{
		"documentsCount": res.DocumentsCount,
		"groupsCount":    res.GroupsCount,
	}
	if res.Summary != nil {
		out["summary"] = renderMetrics(res.Summary.Metrics, map[string]interface{}{})
	}

	groups := make([]map[string]interface{}, len(res.Groups))
	for i, g := range res.Groups {
		group := renderMetrics(g.Metrics, map[string]interface{}{})
		if g.Name != nil {
			group["name"] = *g.Name
		}
		if g.Inner != nil {
			group["group"] = renderResult(g.Inner)
		}
		groups[i] = group
	}
	out["groups"] = groups
	return out
}

func renderMetrics(metrics aggregation.ValueSet, into map[string]interface{}) map[string]interface{} {
	for i, v := range metrics {
		if s, ok := v.Format(); ok {
			into[fmt.Sprintf("metric_%d", i)] = s
		}
	}
	return into
}
