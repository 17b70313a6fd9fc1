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

// Move a shard snapshot to in progress
func (pm *PrometheusMetrics) StartLoadingShard() {
	if pm == nil {
		return
	}

	pm.ShardsLoading.Inc()
}

// Move a shard snapshot from in progress to loaded
func (pm *PrometheusMetrics) FinishLoadingShard(err error) {
	if pm == nil {
		return
	}

	pm.ShardsLoading.Dec()
	if err == nil {
		pm.ShardsLoaded.Inc()
	}
}
