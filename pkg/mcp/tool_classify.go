package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/synthaser/pkg/expr"
	"github.com/macropower/synthaser/pkg/synthase"
)

// ClassifyParams defines parameters for the classify tool.
type ClassifyParams struct {
	Path     string `json:"path,omitempty"`
	Document string `json:"document,omitempty"`
	Where    string `json:"where,omitempty"`
}

// SynthaseSummary describes one classified synthase.
type SynthaseSummary struct {
	Header         string   `json:"header"`
	Architecture   string   `json:"architecture"`
	Classification []string `json:"classification"`
	Length         int      `json:"length"`
}

// ClassifyResult contains the result of a classification.
type ClassifyResult struct {
	Error     string            `json:"error,omitempty"`
	Message   string            `json:"message"`
	Synthases []SynthaseSummary `json:"synthases"`
	Total     int               `json:"total"`
}

// handleClassify handles the classify tool call.
func (s *Server) handleClassify(
	ctx context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[ClassifyParams],
) (*mcp.CallToolResultFor[ClassifyResult], error) {
	var query *expr.Query

	if params.Arguments.Where != "" {
		q, err := expr.NewQuery(params.Arguments.Where)
		if err != nil {
			return nil, fmt.Errorf("INVALID INPUT ERROR: %w", err)
		}

		query = q
	}

	out, err := s.classify(ctx, params.Arguments)
	if err != nil {
		return nil, err
	}

	result := ClassifyResult{
		Total:     out.Total,
		Synthases: []SynthaseSummary{},
	}

	synthases := out.Synthases
	if query != nil {
		synthases, err = query.Filter(synthases)
		if err != nil {
			return nil, fmt.Errorf("INVALID INPUT ERROR: %w", err)
		}
	}

	for _, syn := range synthases {
		result.Synthases = append(result.Synthases, summarize(syn))
	}

	if out.Error != nil {
		result.Error = out.Error.Error()
	}

	return createClassifyResult(result), nil
}

func summarize(s *synthase.Synthase) SynthaseSummary {
	classification := s.Classification
	if classification == nil {
		classification = []string{}
	}

	return SynthaseSummary{
		Header:         s.Header,
		Architecture:   s.Architecture(),
		Classification: classification,
		Length:         s.Length(),
	}
}

// createClassifyResult creates the MCP tool result from ClassifyResult.
func createClassifyResult(result ClassifyResult) *mcp.CallToolResultFor[ClassifyResult] {
	msg := fmt.Sprintf("Classified %d synthases, reporting %d.", result.Total, len(result.Synthases))
	if result.Error != "" {
		msg += " Some synthases could not be classified, see error."
	}

	result.Message = msg

	return &mcp.CallToolResultFor[ClassifyResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: msg,
			},
		},
		StructuredContent: result,
	}
}
