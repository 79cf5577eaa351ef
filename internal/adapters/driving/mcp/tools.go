package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

// ConvertInput is the input schema for the convert tool.
type ConvertInput struct {
	Text   string `json:"text" jsonschema:"the notation to convert, e.g. \\frac{a}{b}"`
	Level  string `json:"level,omitempty" jsonschema:"audience level: basic, intermediate or advanced (default basic)"`
	Domain string `json:"domain,omitempty" jsonschema:"optional domain hint such as calculus; empty lets the classifier decide"`
}

// ConvertOutput is the output schema for the convert tool.
type ConvertOutput struct {
	Output       string   `json:"output"`
	Status       string   `json:"status"`
	Context      string   `json:"context"`
	Confidence   float64  `json:"confidence"`
	Unrecognized []string `json:"unrecognized,omitempty"`
	Passes       int      `json:"passes"`
	Grids        int      `json:"grids"`
	CacheHit     bool     `json:"cache_hit"`
	ElapsedMS    float64  `json:"elapsed_ms"`
	Errors       []string `json:"errors,omitempty"`
}

// BatchInput is the input schema for the convert_batch tool.
type BatchInput struct {
	Texts  []string `json:"texts" jsonschema:"the notation inputs to convert"`
	Level  string   `json:"level,omitempty" jsonschema:"audience level for every input"`
	Domain string   `json:"domain,omitempty" jsonschema:"optional domain hint for every input"`
}

// BatchOutput is the output schema for the convert_batch tool.
type BatchOutput struct {
	Results []ConvertOutput `json:"results"`
	Count   int             `json:"count"`
}

// DomainsOutput is the output schema for the domains tool.
type DomainsOutput struct {
	Domains []string `json:"domains"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert mathematical notation into natural-language text for speech",
	}, s.handleConvert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_batch",
		Description: "Convert several notation inputs, returning results in input order",
	}, s.handleBatch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "domains",
		Description: "List the domain hints accepted by convert",
	}, s.handleDomains)
}

func options(level, hint string) (domain.ConvertOptions, error) {
	opts := domain.ConvertOptions{DomainHint: hint}
	if strings.TrimSpace(level) == "" {
		return opts, nil
	}
	l, err := domain.ParseAudienceLevel(level)
	if err != nil {
		return opts, err
	}
	opts.Level = l
	return opts, nil
}

func toOutput(res *domain.ProcessingResult) ConvertOutput {
	return ConvertOutput{
		Output:       res.Output,
		Status:       res.Status.String(),
		Context:      res.Context.Label,
		Confidence:   res.Context.Confidence,
		Unrecognized: res.Unrecognized,
		Passes:       res.Passes,
		Grids:        res.Grids,
		CacheHit:     res.CacheHit,
		ElapsedMS:    float64(res.Elapsed.Microseconds()) / 1000,
		Errors:       res.Errors,
	}
}

// handleConvert handles the convert tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	if err := s.wait(ctx); err != nil {
		return nil, ConvertOutput{}, err
	}
	opts, err := options(input.Level, input.Domain)
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	res, err := s.ports.Conversion.Convert(ctx, input.Text, opts)
	if err != nil {
		return nil, ConvertOutput{}, err
	}
	return nil, toOutput(res), nil
}

// handleBatch handles the convert_batch tool invocation.
func (s *Server) handleBatch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BatchInput,
) (*mcp.CallToolResult, BatchOutput, error) {
	if s.ports.Batch == nil {
		return nil, BatchOutput{}, ErrBatchUnavailable
	}
	if err := s.wait(ctx); err != nil {
		return nil, BatchOutput{}, err
	}
	opts, err := options(input.Level, input.Domain)
	if err != nil {
		return nil, BatchOutput{}, err
	}

	results, err := s.ports.Batch.ConvertAll(ctx, input.Texts, opts)
	if err != nil {
		return nil, BatchOutput{}, err
	}

	output := BatchOutput{
		Results: make([]ConvertOutput, len(results)),
		Count:   len(results),
	}
	for i, res := range results {
		output.Results[i] = toOutput(res)
	}
	return nil, output, nil
}

// handleDomains handles the domains tool invocation.
func (s *Server) handleDomains(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, DomainsOutput, error) {
	return nil, DomainsOutput{Domains: s.ports.Conversion.Domains()}, nil
}
