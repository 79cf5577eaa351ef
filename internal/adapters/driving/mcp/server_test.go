package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewServer(t *testing.T) {
	t.Run("nil conversion service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingConversionService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Conversion: &mockConversionService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil conversion service returns error", func(t *testing.T) {
		ports := &Ports{}
		err := ports.Validate()
		assert.ErrorIs(t, err, ErrMissingConversionService)
	})

	t.Run("conversion only is valid", func(t *testing.T) {
		ports := &Ports{
			Conversion: &mockConversionService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Conversion: &mockConversionService{},
			Batch:      &mockBatchService{},
			Tokens:     &mockTokenService{},
		}
		err := ports.Validate()
		assert.NoError(t, err)
	})
}

func TestServer_RateLimit(t *testing.T) {
	ports := &Ports{Conversion: &mockConversionService{}}
	server, err := NewServer(ports, WithRateLimit(rate.Every(time.Hour), 1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err = server.handleConvert(ctx, nil, ConvertInput{Text: "x"})
	require.NoError(t, err)

	_, _, err = server.handleConvert(ctx, nil, ConvertInput{Text: "y"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
