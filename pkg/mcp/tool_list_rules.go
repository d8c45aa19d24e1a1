package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/synthaser/pkg/rulegraph"
)

// ListRulesParams defines parameters for the list_rules tool.
type ListRulesParams struct{}

// RuleSummary describes one classification rule.
type RuleSummary struct {
	Name      string   `json:"name"`
	Evaluator string   `json:"evaluator"`
	Domains   []string `json:"domains"`
}

// ListRulesResult contains the rules and the classification paths of the
// rule graph.
type ListRulesResult struct {
	Message string        `json:"message"`
	Rules   []RuleSummary `json:"rules"`
	Paths   []string      `json:"paths"`
}

// handleListRules handles the list_rules tool call.
func (s *Server) handleListRules(
	_ context.Context,
	_ *mcp.ServerSession,
	_ *mcp.CallToolParamsFor[ListRulesParams],
) (*mcp.CallToolResultFor[ListRulesResult], error) {
	g := s.runner.Graph()

	result := ListRulesResult{
		Rules: make([]RuleSummary, 0, len(g.Rules)),
		Paths: classificationPaths(g.Entries),
	}

	for _, r := range g.Rules {
		domains := r.Domains
		if domains == nil {
			domains = []string{}
		}

		result.Rules = append(result.Rules, RuleSummary{
			Name:      r.Name,
			Evaluator: r.Evaluator,
			Domains:   domains,
		})
	}

	msg := fmt.Sprintf("Found %d rules and %d classification paths.", len(result.Rules), len(result.Paths))
	result.Message = msg

	return &mcp.CallToolResultFor[ListRulesResult]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: msg,
			},
		},
		StructuredContent: result,
	}, nil
}

// classificationPaths lists every root-to-entry path of the graph in
// traversal order.
func classificationPaths(entries []rulegraph.Entry) []string {
	paths := []string{}

	var stack []string

	for _, root := range entries {
		root.Walk(func(e rulegraph.Entry, depth int) {
			stack = append(stack[:depth], e.Name)
			paths = append(paths, strings.Join(stack, " > "))
		})
	}

	return paths
}
