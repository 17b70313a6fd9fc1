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

package errors

import (
	"errors"
	"fmt"
)

// ErrSegmentGone is returned by segment readers when a background compaction
// replaced the segment a searcher was opened on.
var ErrSegmentGone = errors.New("segment gone")

// ErrUnableToComplete is what callers see once retries are exhausted.
var ErrUnableToComplete = errors.New("unable to complete query")

func IsTransient(err error) bool {
	return IsSegmentGone(err)
}

func IsSegmentGone(err error) bool {
	return errors.Is(err, ErrSegmentGone)
}

func NewSegmentGone(shard string) error {
	return fmt.Errorf("shard %s: %w", shard, ErrSegmentGone)
}

// NewUnableToComplete keeps the last underlying cause attached.
func NewUnableToComplete(cause error) error {
	return fmt.Errorf("%w: %w", ErrUnableToComplete, cause)
}

// ErrConfiguration marks a request or schema problem. It is never retried.
type ErrConfiguration struct {
	msg string
}

func (e ErrConfiguration) Error() string {
	return e.msg
}

func NewConfigurationError(format string, args ...interface{}) ErrConfiguration {
	return ErrConfiguration{msg: fmt.Sprintf(format, args...)}
}

func IsConfiguration(err error) bool {
	var target ErrConfiguration
	return errors.As(err, &target)
}
