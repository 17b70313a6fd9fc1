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
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/entities/schema"
)

// maxImportBytes bounds the body of a shard import.
const maxImportBytes = 64 << 20

type importShardRequest struct {
	Name   string        `json:"name" validate:"required,max=128,excludesall=/\\"`
	Tables []importTable `json:"tables" validate:"required,min=1,dive"`
}

type importTable struct {
	Class     *importClass       `json:"class" validate:"required"`
	Documents []segment.Document `json:"documents" validate:"dive"`
}

type importClass struct {
	Name       string            `json:"name" validate:"required"`
	Properties []*importProperty `json:"properties" validate:"dive"`
}

type importProperty struct {
	Name     string `json:"name" validate:"required,ne=id"`
	DataType string `json:"dataType" validate:"required"`
	Target   string `json:"target"`
}

type importShardResponse struct {
	Name      string         `json:"name"`
	Documents map[string]int `json:"documents"`
}

// shardStore is where imported shards go. Persisted shards are loaded again
// on startup.
type shardStore interface {
	Put(shard *segment.Shard)
}

type shardHandlers struct {
	store    shardStore
	dataPath string
	validate *validator.Validate
	logger   logrus.FieldLogger
}

func (h *shardHandlers) importShard(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r.Context(), h.logger).WithField("action", "restapi_import_shard")

	var req importShardRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errPayloadFromSingleErr(errors.Wrap(err, "decode body")))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errPayloadFromSingleErr(err))
		return
	}

	shard, err := buildShard(&req)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errPayloadFromSingleErr(err))
		return
	}

	if h.dataPath != "" {
		if err := segment.SaveSnapshot(h.dataPath, shard); err != nil {
			logger.WithError(err).WithField("shard", shard.Name).Error("persist shard snapshot")
			writeJSON(w, http.StatusInternalServerError, errPayloadFromSingleErr(err))
			return
		}
	}
	h.store.Put(shard)

	res := importShardResponse{Name: shard.Name, Documents: map[string]int{}}
	for class, table := range shard.Tables {
		res.Documents[class] = len(table.IDs)
	}
	logger.WithField("shard", shard.Name).
		WithField("documents", res.Documents).
		Info("shard imported")
	writeJSON(w, http.StatusCreated, res)
}

func buildShard(req *importShardRequest) (*segment.Shard, error) {
	builder := segment.NewShardBuilder(req.Name)
	for _, table := range req.Tables {
		class := &schema.Class{Name: table.Class.Name}
		for _, prop := range table.Class.Properties {
			dt, err := schema.ParseDataType(prop.DataType)
			if err != nil {
				return nil, errors.Wrapf(err, "class %s: property %s", class.Name, prop.Name)
			}
			if dt == schema.DataTypeLink && prop.Target == "" {
				return nil, errors.Errorf("class %s: link property %s has no target", class.Name, prop.Name)
			}
			class.Properties = append(class.Properties, &schema.Property{
				Name:     prop.Name,
				DataType: dt,
				Target:   prop.Target,
			})
		}
		builder.Add(class, table.Documents...)
	}
	return builder.Build()
}

func setupShardHandlers(router *mux.Router, store shardStore, dataPath string, logger logrus.FieldLogger) {
	h := &shardHandlers{
		store:    store,
		dataPath: dataPath,
		validate: validator.New(),
		logger:   logger,
	}
	router.HandleFunc("/v1/shards", h.importShard).Methods(http.MethodPost)
}
