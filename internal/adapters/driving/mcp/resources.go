package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for speakmath resources.
	uriScheme = "speakmath://"

	// tokenResourceLimit caps the token listing.
	tokenResourceLimit = 100
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tokens",
		Name:        "tokens",
		Description: "Most frequent control words that no rule recognised",
		MIMEType:    "application/json",
	}, s.handleTokensResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "rules",
		Name:        "rules",
		Description: "Every rewrite rule in priority order",
		MIMEType:    "application/json",
	}, s.handleRulesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "rules/{layer}",
		Name:        "layer-rules",
		Description: "Rewrite rules of one layer in priority order",
		MIMEType:    "application/json",
	}, s.handleRulesResource)
}

// handleTokensResource returns the unrecognized token log.
func (s *Server) handleTokensResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Tokens == nil {
		return jsonResult(req.Params.URI, []domain.TokenRecord{})
	}

	records, err := s.ports.Tokens.List(ctx, tokenResourceLimit)
	if err != nil {
		return nil, fmt.Errorf("listing tokens: %w", err)
	}
	if records == nil {
		records = []domain.TokenRecord{}
	}
	return jsonResult(req.Params.URI, records)
}

// handleRulesResource returns all rules, or one layer's rules for
// speakmath://rules/{layer}.
func (s *Server) handleRulesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	layer, ok := extractLayer(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	infos, err := s.ports.Conversion.Rules(layer)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractLayer parses speakmath://rules and speakmath://rules/{layer}. The
// layer is empty for the first form.
func extractLayer(uri string) (string, bool) {
	const base = uriScheme + "rules"

	if uri == base {
		return "", true
	}
	rest, ok := strings.CutPrefix(uri, base+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
