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

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// FromEnv takes a *Config as it will respect initial config that has been
// provided by other means (e.g. a config file) and will only extend those
// that are set
func FromEnv(config *Config) error {
	if v := os.Getenv("LISTEN_ADDRESS"); v != "" {
		config.Listen = v
	}

	if v := os.Getenv("PERSISTENCE_DATA_PATH"); v != "" {
		config.Persistence.DataPath = v
	}

	if err := parsePositiveInt("AGGREGATION_MAX_CONCURRENT_SHARDS", func(val int) {
		config.Aggregation.MaxConcurrentShards = val
	}); err != nil {
		return err
	}

	if v := os.Getenv("AGGREGATION_TIME_ZONE"); v != "" {
		config.Aggregation.TimeZone = v
	}

	if err := parsePositiveInt("AGGREGATION_MAX_BUCKETS", func(val int) {
		config.Aggregation.MaxBuckets = val
	}); err != nil {
		return err
	}

	if v := os.Getenv("AGGREGATION_RETRY_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "parse AGGREGATION_RETRY_INTERVAL as duration")
		}
		config.Aggregation.RetryInterval = d
	}

	if err := parsePositiveInt("AGGREGATION_CHECK_INTERVAL", func(val int) {
		config.Aggregation.CheckInterval = val
	}); err != nil {
		return err
	}

	if enabled(os.Getenv("PROMETHEUS_MONITORING_ENABLED")) {
		config.Monitoring.Enabled = true
	}

	if v := os.Getenv("PROMETHEUS_MONITORING_PATH"); v != "" {
		config.Monitoring.Path = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}

	if v := os.Getenv("CORS_ALLOW_ORIGIN"); v != "" {
		config.CORS.AllowOrigin = v
	}

	if v := os.Getenv("CORS_ALLOW_METHODS"); v != "" {
		config.CORS.AllowMethods = v
	}

	if v := os.Getenv("CORS_ALLOW_HEADERS"); v != "" {
		config.CORS.AllowHeaders = v
	}

	return nil
}

func parsePositiveInt(varName string, cb func(val int)) error {
	if v := os.Getenv(varName); v != "" {
		asInt, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "parse %s as int", varName)
		}
		if asInt <= 0 {
			return errors.Errorf("%s must be an integer greater than 0. Got: %v", varName, asInt)
		}
		cb(asInt)
	}
	return nil
}

func enabled(value string) bool {
	switch strings.ToLower(value) {
	case "on", "enabled", "1", "true":
		return true
	default:
		return false
	}
}
