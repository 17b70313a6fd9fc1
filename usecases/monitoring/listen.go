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

import (
	"net"
	"sync"
)

// CountingListener tracks the open connections of l in OpenConnections.
// A nil pm returns l unchanged.
func (pm *PrometheusMetrics) CountingListener(l net.Listener) net.Listener {
	if pm == nil {
		return l
	}
	return &countingListener{Listener: l, metrics: pm}
}

type countingListener struct {
	net.Listener
	metrics *PrometheusMetrics
}

func (c *countingListener) Accept() (net.Conn, error) {
	conn, err := c.Listener.Accept()
	if err != nil {
		return nil, err
	}
	c.metrics.OpenConnections.Inc()
	return &countingConn{Conn: conn, metrics: c.metrics}, nil
}

type countingConn struct {
	net.Conn
	metrics *PrometheusMetrics
	once    sync.Once
}

// Close may be called repeatedly, the connection is uncounted once.
func (c *countingConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(c.metrics.OpenConnections.Dec)
	return err
}
