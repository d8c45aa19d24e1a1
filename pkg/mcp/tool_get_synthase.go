package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/synthase"
)

// GetSynthaseParams defines parameters for the get_synthase tool.
type GetSynthaseParams struct {
	Header string `json:"header"`
}

// HitDetails describes one domain hit.
type HitDetails struct {
	Label  string `json:"type"`
	Family string `json:"domain"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// SynthaseDetails describes a classified synthase and its domain hits.
type SynthaseDetails struct {
	Header         string       `json:"header"`
	Architecture   string       `json:"architecture"`
	Classification []string     `json:"classification"`
	Domains        []HitDetails `json:"domains"`
	Length         int          `json:"length"`
}

// GetSynthaseResult contains the result of getting a synthase.
type GetSynthaseResult struct {
	Synthase *SynthaseDetails `json:"synthase,omitempty"`
	Message  string           `json:"message"`
	Found    bool             `json:"found"`
}

// handleGetSynthase handles the get_synthase tool call.
func (s *Server) handleGetSynthase(
	_ context.Context,
	_ *mcp.ServerSession,
	params *mcp.CallToolParamsFor[GetSynthaseParams],
) (*mcp.CallToolResultFor[GetSynthaseResult], error) {
	s.mu.Lock()
	syn, ok := s.synthases[params.Arguments.Header]
	s.mu.Unlock()

	result := GetSynthaseResult{Found: ok}
	if ok {
		result.Synthase = details(syn)
	}

	return createGetSynthaseResult(result, params.Arguments), nil
}

func details(s *synthase.Synthase) *SynthaseDetails {
	summary := summarize(s)

	d := &SynthaseDetails{
		Header:         summary.Header,
		Architecture:   summary.Architecture,
		Classification: summary.Classification,
		Length:         summary.Length,
		Domains:        make([]HitDetails, 0, len(s.Domains)),
	}

	for _, h := range s.Domains {
		d.Domains = append(d.Domains, hitDetails(h))
	}

	return d
}

func hitDetails(h *domain.Hit) HitDetails {
	return HitDetails{
		Label:  h.Label,
		Family: h.Family,
		Start:  h.Start,
		End:    h.End,
	}
}

// createGetSynthaseResult creates the MCP tool result from GetSynthaseResult.
func createGetSynthaseResult(result GetSynthaseResult, params GetSynthaseParams) *mcp.CallToolResultFor[GetSynthaseResult] {
	var msg string
	if result.Found {
		msg = fmt.Sprintf("Found synthase %s.", params.Header)
	} else {
		msg = fmt.Sprintf("INVALID INPUT ERROR: Synthase %q not found. Use an EXACT header from the classify tool.", params.Header)
	}

	result.Message = msg

	return &mcp.CallToolResultFor[GetSynthaseResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: msg,
			},
		},
		StructuredContent: result,
	}
}
