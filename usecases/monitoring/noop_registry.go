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

package monitoring

import "github.com/prometheus/client_golang/prometheus"

// NoopRegisterer accepts every collector without exporting it. It backs the
// metrics when monitoring is disabled.
var NoopRegisterer prometheus.Registerer = noopRegisterer{}

type noopRegisterer struct{}

func (noopRegisterer) Register(prometheus.Collector) error {
	return nil
}

func (noopRegisterer) MustRegister(...prometheus.Collector) {}

func (noopRegisterer) Unregister(prometheus.Collector) bool {
	return true
}
