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
	"errors"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/usecases/config"
)

const serviceName = "olapcore"

type OlapJSONFormatter struct {
	*logrus.JSONFormatter
	goVersion string
}

func NewOlapJSONFormatter() logrus.Formatter {
	return &OlapJSONFormatter{&logrus.JSONFormatter{}, runtime.Version()}
}

func (f *OlapJSONFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Data["service"] = serviceName
	e.Data["build_go_version"] = f.goVersion
	return f.JSONFormatter.Format(e)
}

type OlapTextFormatter struct {
	*logrus.TextFormatter
	goVersion string
}

func NewOlapTextFormatter() logrus.Formatter {
	return &OlapTextFormatter{&logrus.TextFormatter{}, runtime.Version()}
}

func (f *OlapTextFormatter) Format(e *logrus.Entry) ([]byte, error) {
	e.Data["service"] = serviceName
	e.Data["build_go_version"] = f.goVersion
	return f.TextFormatter.Format(e)
}

var errlogLevelNotRecognized = errors.New("log level not recognized")

// logLevelFromString converts a string to a logrus log level, returns a logLevelNotRecognized
// error if the string is not recognized. level is case insensitive.
func logLevelFromString(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "panic":
		return logrus.PanicLevel, nil
	case "fatal":
		return logrus.FatalLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "debug":
		return logrus.DebugLevel, nil
	case "trace":
		return logrus.TraceLevel, nil
	default:
		return 0, errlogLevelNotRecognized
	}
}

// ConfigureLogger applies level and format to logger. An empty level keeps
// info, an empty format keeps text.
func ConfigureLogger(logger *logrus.Logger, cfg config.Logging) error {
	switch cfg.Format {
	case "json":
		logger.SetFormatter(NewOlapJSONFormatter())
	default:
		logger.SetFormatter(NewOlapTextFormatter())
	}

	if cfg.Level == "" {
		logger.SetLevel(logrus.InfoLevel)
		return nil
	}
	level, err := logLevelFromString(cfg.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}
