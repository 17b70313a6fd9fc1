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

package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/repos/db/aggregator"
	"github.com/weaviate/olapcore/adapters/repos/db/duplicates"
	"github.com/weaviate/olapcore/adapters/repos/db/segment"
	"github.com/weaviate/olapcore/usecases/config"
	"github.com/weaviate/olapcore/usecases/monitoring"
)

// State is the only source of application-wide state
type State struct {
	ServerConfig *config.Config
	Logger       *logrus.Logger
	Store        *segment.Memory
	Aggregator   *aggregator.Aggregator
	Duplicates   *duplicates.Detector
	Metrics      *monitoring.PrometheusMetrics
	// Gatherer serves the metrics endpoint, nil if monitoring is disabled.
	Gatherer prometheus.Gatherer
}
