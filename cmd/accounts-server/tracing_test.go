package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTracingWithoutEndpoint(t *testing.T) {
	t.Setenv("ACCOUNTS_OTEL_ENDPOINT", "http://ignored:4318")

	shutdown, err := setupTracing(context.Background(), serviceName, "  ")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracingWithEndpoint(t *testing.T) {
	shutdown, err := setupTracing(context.Background(), serviceName, "http://127.0.0.1:4318")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
