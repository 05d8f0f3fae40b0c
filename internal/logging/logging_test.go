package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(false, false)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestNewBuildsStructuredLogger(t *testing.T) {
	logger, err := New(true, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
}

func TestWarnFuncCallsLoggerWithoutPanicking(t *testing.T) {
	logger, err := New(false, false)
	require.NoError(t, err)
	warn := WarnFunc(logger)
	require.NotPanics(t, func() { warn("something went sideways") })
}
