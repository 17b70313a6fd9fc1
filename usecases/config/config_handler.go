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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
	// zone names resolve without a system zoneinfo
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile string = "./olapcore.conf.yaml"

const (
	DefaultListen              = "127.0.0.1:8080"
	DefaultPersistenceDataPath = "./data"
	DefaultMaxBuckets          = 100000
	DefaultRetryInterval       = 50 * time.Millisecond
	DefaultCheckInterval       = 1024
	DefaultMonitoringPath      = "/metrics"
	DefaultCORSAllowOrigin     = "*"
	DefaultCORSAllowMethods    = "GET, POST, OPTIONS"
	DefaultCORSAllowHeaders    = "Content-Type"
	DefaultLoggingLevel        = "info"
	DefaultLoggingFormat       = "text"
	DefaultAggregationTimeZone = "UTC"
	DefaultMaxConcurrentShards = 0
	DefaultShutdownTimeout     = 10 * time.Second
)

// Flags are the command line options of the server.
type Flags struct {
	ConfigFile string `long:"config-file" description:"path to a yaml or json config file"`
	DataPath   string `long:"data-path" description:"directory holding the shard snapshots"`
	Listen     string `long:"listen" description:"address the REST API listens on, host:port"`
	LogLevel   string `long:"log-level" description:"one of trace, debug, info, warn, error"`
}

type Config struct {
	Listen      string      `json:"listen" yaml:"listen" validate:"required,hostname_port"`
	Persistence Persistence `json:"persistence" yaml:"persistence"`
	Aggregation Aggregation `json:"aggregation" yaml:"aggregation"`
	Monitoring  Monitoring  `json:"monitoring" yaml:"monitoring"`
	Logging     Logging     `json:"logging" yaml:"logging"`
	CORS        CORS        `json:"cors" yaml:"cors"`

	// ShutdownTimeout bounds the wait for running requests on shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`
}

type Persistence struct {
	DataPath string `json:"data_path" yaml:"data_path" validate:"required"`
}

type Aggregation struct {
	// MaxConcurrentShards limits the shards scanned in parallel by one
	// request, 0 means no limit.
	MaxConcurrentShards int `json:"max_concurrent_shards" yaml:"max_concurrent_shards" validate:"gte=0"`
	// TimeZone is an IANA zone name used for date grouping.
	TimeZone      string        `json:"time_zone" yaml:"time_zone"`
	MaxBuckets    int           `json:"max_buckets" yaml:"max_buckets" validate:"gte=0"`
	RetryInterval time.Duration `json:"retry_interval" yaml:"retry_interval" validate:"gte=0"`
	CheckInterval int           `json:"check_interval" yaml:"check_interval" validate:"gte=0"`
}

// Location resolves TimeZone, an empty zone is UTC.
func (a Aggregation) Location() (*time.Location, error) {
	if a.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("aggregation.time_zone: %w", err)
	}
	return loc, nil
}

type Monitoring struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path" validate:"required_if=Enabled true"`
}

type Logging struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=panic fatal error warn warning info debug trace"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

type CORS struct {
	AllowOrigin  string `json:"allow_origin" yaml:"allow_origin"`
	AllowMethods string `json:"allow_methods" yaml:"allow_methods"`
	AllowHeaders string `json:"allow_headers" yaml:"allow_headers"`
}

// Default is the configuration used for every option not given.
func Default() Config {
	return Config{
		Listen:      DefaultListen,
		Persistence: Persistence{DataPath: DefaultPersistenceDataPath},
		Aggregation: Aggregation{
			MaxConcurrentShards: DefaultMaxConcurrentShards,
			TimeZone:            DefaultAggregationTimeZone,
			MaxBuckets:          DefaultMaxBuckets,
			RetryInterval:       DefaultRetryInterval,
			CheckInterval:       DefaultCheckInterval,
		},
		Monitoring: Monitoring{Path: DefaultMonitoringPath},
		Logging:    Logging{Level: DefaultLoggingLevel, Format: DefaultLoggingFormat},
		CORS: CORS{
			AllowOrigin:  DefaultCORSAllowOrigin,
			AllowMethods: DefaultCORSAllowMethods,
			AllowHeaders: DefaultCORSAllowHeaders,
		},
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return configErr(err)
	}
	if _, err := c.Aggregation.Location(); err != nil {
		return configErr(err)
	}
	return nil
}

// LoadConfig builds the configuration. The load order is
// 1. Defaults
// 2. Config file
// 3. Environment variables
// 4. Command line flags
// where later sources override earlier ones.
func LoadConfig(flags *Flags, logger logrus.FieldLogger) (*Config, error) {
	config := Default()

	configFileName := flags.ConfigFile
	explicit := configFileName != ""
	if !explicit {
		configFileName = DefaultConfigFile
	}

	file, err := os.ReadFile(configFileName)
	switch {
	case err == nil:
		logger.WithField("action", "config_load").WithField("config_file_path", configFileName).
			Info("loading config file")
		if err := parseConfigFile(file, configFileName, &config); err != nil {
			return nil, configErr(err)
		}
	case explicit || !os.IsNotExist(err):
		return nil, configErr(fmt.Errorf("read config file: %w", err))
	}

	if err := FromEnv(&config); err != nil {
		return nil, configErr(err)
	}

	fromFlags(flags, &config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// parseConfigFile decodes file on top of config, keeping every value the
// file does not set.
func parseConfigFile(file []byte, name string, config *Config) error {
	switch ext := filepath.Ext(name); ext {
	case ".json":
		if err := json.Unmarshal(file, config); err != nil {
			return fmt.Errorf("error unmarshalling the json config file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(file, config); err != nil {
			return fmt.Errorf("error unmarshalling the yaml config file: %w", err)
		}
	case "":
		return fmt.Errorf("config file does not have a file ending, got '%s'", name)
	default:
		return fmt.Errorf("unsupported config file extension '%s', use .yaml or .json", ext[1:])
	}
	return nil
}

// fromFlags overrides config with every flag that was given.
func fromFlags(flags *Flags, config *Config) {
	if flags.DataPath != "" {
		config.Persistence.DataPath = flags.DataPath
	}
	if flags.Listen != "" {
		config.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		config.Logging.Level = flags.LogLevel
	}
}

func configErr(err error) error {
	return fmt.Errorf("invalid config: %w", err)
}
