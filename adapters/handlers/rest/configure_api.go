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
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/handlers/rest/state"
	dbaggregator "github.com/weaviate/olapcore/adapters/repos/db/aggregator"
	"github.com/weaviate/olapcore/adapters/repos/db/duplicates"
	"github.com/weaviate/olapcore/adapters/repos/db/inverted"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	enterrors "github.com/weaviate/olapcore/entities/errors"
	"github.com/weaviate/olapcore/usecases/config"
	"github.com/weaviate/olapcore/usecases/monitoring"
)

// MakeAppState loads the config and every shard snapshot and wires the
// aggregation components.
func MakeAppState(flags *config.Flags) (*state.State, error) {
	appState := &state.State{}

	logger := logger()
	appState.Logger = logger

	serverConfig, err := config.LoadConfig(flags, logger)
	if err != nil {
		return nil, err
	}
	appState.ServerConfig = serverConfig
	if err := ConfigureLogger(logger, serverConfig.Logging); err != nil {
		return nil, errors.Wrap(err, "configure logger")
	}
	logger.WithField("action", "startup").Debug("config loaded")

	appState.Metrics = monitoring.NewPrometheusMetrics(monitoring.NoopRegisterer)
	if serverConfig.Monitoring.Enabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		appState.Metrics = monitoring.NewPrometheusMetrics(registry)
		appState.Gatherer = registry
	}

	appState.Store = segment.NewMemory()
	loaded, err := appState.Store.LoadSnapshots(serverConfig.Persistence.DataPath, logger, appState.Metrics)
	if err != nil {
		return nil, errors.Wrap(err, "load shard snapshots")
	}
	logger.WithField("action", "startup").
		WithField("shards", loaded).
		WithField("data_path", serverConfig.Persistence.DataPath).
		Info("shard snapshots loaded")

	loc, err := serverConfig.Aggregation.Location()
	if err != nil {
		return nil, err
	}
	appState.Aggregator = dbaggregator.New(appState.Store, inverted.NewEvaluator(), dbaggregator.Config{
		MaxConcurrentShards: serverConfig.Aggregation.MaxConcurrentShards,
		MaxBuckets:          serverConfig.Aggregation.MaxBuckets,
		Location:            loc,
		RetryInterval:       serverConfig.Aggregation.RetryInterval,
		CheckInterval:       serverConfig.Aggregation.CheckInterval,
	}, logger, appState.Metrics)
	appState.Duplicates = duplicates.New(appState.Store, serverConfig.Aggregation.RetryInterval,
		logger, appState.Metrics)

	return appState, nil
}

// logger does not parse the regular config object, as logging needs to be
// configured before the configuration is even loaded/parsed. Level and
// format are applied by ConfigureLogger once the config is known.
func logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(NewOlapTextFormatter())
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

// NewHandler builds the routes of the REST API.
func NewHandler(appState *state.State) http.Handler {
	router := mux.NewRouter()
	router.Use(appState.Metrics.InstrumentHandler)

	setupAggregateHandlers(router, appState.Aggregator, appState.Duplicates, appState.Logger)
	setupShardHandlers(router, appState.Store, appState.ServerConfig.Persistence.DataPath, appState.Logger)
	setupWellKnownHandlers(router)

	if appState.Gatherer != nil {
		router.Handle(appState.ServerConfig.Monitoring.Path,
			promhttp.HandlerFor(appState.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	return setupGlobalMiddleware(router, appState.ServerConfig.CORS, appState.Logger)
}

func setupWellKnownHandlers(router *mux.Router) {
	ok := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
	router.HandleFunc("/v1/.well-known/live", ok).Methods(http.MethodGet)
	router.HandleFunc("/v1/.well-known/ready", ok).Methods(http.MethodGet)
}

// Serve runs the REST API until ctx is done, then waits up to the
// configured shutdown timeout for running requests.
func Serve(ctx context.Context, appState *state.State) error {
	cfg := appState.ServerConfig
	logger := appState.Logger.WithField("action", "serve")

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Listen)
	}

	server := &http.Server{
		Handler:           NewHandler(appState),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	enterrors.GoWrapper(func() {
		logger.WithField("address", listener.Addr().String()).Info("serving REST API")
		errs <- server.Serve(appState.Metrics.CountingListener(listener))
	}, logger)

	select {
	case err := <-errs:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	if err := <-errs; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	return nil
}
