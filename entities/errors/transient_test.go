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
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTaxonomy(t *testing.T) {
	t.Run("segment gone survives wrapping", func(t *testing.T) {
		err := pkgerrors.Wrap(NewSegmentGone("shard-1"), "scan")
		assert.True(t, IsSegmentGone(err))
		assert.True(t, IsTransient(err))
		assert.False(t, IsConfiguration(err))
	})

	t.Run("configuration errors are not transient", func(t *testing.T) {
		err := pkgerrors.Wrap(NewConfigurationError("unknown parameter %q", "x"), "parse")
		assert.True(t, IsConfiguration(err))
		assert.False(t, IsTransient(err))
		assert.Contains(t, err.Error(), `unknown parameter "x"`)
	})

	t.Run("unable to complete keeps the cause", func(t *testing.T) {
		cause := NewSegmentGone("shard-2")
		err := NewUnableToComplete(cause)
		assert.True(t, errors.Is(err, ErrUnableToComplete))
		assert.True(t, IsSegmentGone(err))
	})
}

func TestErrorGroupWrapper(t *testing.T) {
	logger, _ := test.NewNullLogger()

	t.Run("first error is returned", func(t *testing.T) {
		eg := NewErrorGroupWrapper(logger)
		eg.Go(func() error { return nil })
		eg.Go(func() error { return errors.New("boom") })
		require.EqualError(t, eg.Wait(), "boom")
	})

	t.Run("panic turns into an error", func(t *testing.T) {
		eg := NewErrorGroupWrapper(logger, "shard-a")
		eg.Go(func() error { panic("oops") })
		err := eg.Wait()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "panic occurred: oops")
	})
}
