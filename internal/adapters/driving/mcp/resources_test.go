package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleTokensResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists tokens", func(t *testing.T) {
		tokens := &mockTokenService{
			records: []domain.TokenRecord{
				{Token: `\foo`, Count: 3, Sample: `\foo x`, Context: domain.DomainGeneral},
			},
		}
		server, err := NewServer(&Ports{Conversion: &mockConversionService{}, Tokens: tokens})
		require.NoError(t, err)

		result, err := server.handleTokensResource(ctx, readRequest("speakmath://tokens"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "speakmath://tokens", result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var got []domain.TokenRecord
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 1)
		assert.Equal(t, `\foo`, got[0].Token)
		assert.Equal(t, 3, got[0].Count)
	})

	t.Run("without token service returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Conversion: &mockConversionService{}})
		require.NoError(t, err)

		result, err := server.handleTokensResource(ctx, readRequest("speakmath://tokens"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", result.Contents[0].Text)
	})

	t.Run("propagates store error", func(t *testing.T) {
		tokens := &mockTokenService{err: errors.New("disk gone")}
		server, err := NewServer(&Ports{Conversion: &mockConversionService{}, Tokens: tokens})
		require.NoError(t, err)

		_, err = server.handleTokensResource(ctx, readRequest("speakmath://tokens"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")
	})
}

func TestServer_handleRulesResource(t *testing.T) {
	ctx := context.Background()
	conv := &mockConversionService{
		rules: map[string][]domain.RuleInfo{
			domain.LayerCalculus: {
				{Layer: domain.LayerCalculus, Priority: 0, Name: "integral", Match: "token", Trigger: `\int`},
			},
		},
	}
	server, err := NewServer(&Ports{Conversion: conv})
	require.NoError(t, err)

	t.Run("all rules", func(t *testing.T) {
		result, err := server.handleRulesResource(ctx, readRequest("speakmath://rules"))
		require.NoError(t, err)

		var got []domain.RuleInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "integral", got[0].Name)
	})

	t.Run("one layer", func(t *testing.T) {
		result, err := server.handleRulesResource(ctx, readRequest("speakmath://rules/calculus"))
		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"trigger": "\\int"`)
	})

	t.Run("unknown layer is not found", func(t *testing.T) {
		_, err := server.handleRulesResource(ctx, readRequest("speakmath://rules/topology"))
		require.Error(t, err)
	})

	t.Run("malformed uri is not found", func(t *testing.T) {
		_, err := server.handleRulesResource(ctx, readRequest("speakmath://rules/a/b"))
		require.Error(t, err)
	})
}

func TestExtractLayer(t *testing.T) {
	tests := []struct {
		uri   string
		layer string
		ok    bool
	}{
		{"speakmath://rules", "", true},
		{"speakmath://rules/calculus", "calculus", true},
		{"speakmath://rules/", "", false},
		{"speakmath://rules/a/b", "", false},
		{"speakmath://tokens", "", false},
		{"other://rules", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			layer, ok := extractLayer(tt.uri)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.layer, layer)
		})
	}
}
