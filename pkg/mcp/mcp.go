// Package mcp implements a Model Context Protocol server that exposes
// synthase classification as tools.
package mcp

const (
	name         = "synthaser"
	instructions = `MCP Server 'synthaser' classifies multi-domain synthases (PKS, NRPS and hybrids) from their conserved domain hits using a hierarchical rule graph.

When to use these tools:
- Classifying synthases from a document of domain hits (JSON or YAML)
- Explaining why a synthase received a classification
- Inspecting the rules and the rule hierarchy in use

REQUIRED workflow:
1. Use 'classify' with either a 'path' to a synthase document or the document itself in 'document'
2. STOP and READ the output to see each synthase's header, classification and domain architecture
3. Use 'get_synthase' with an EXACT header from the 'classify' output to see its domain hits
4. Use 'list_rules' to see which domains and conditions each classification requires

Synthase documents are lists of {header, sequence, domains: [{type, domain, start, end}]}, where 'type' is the domain label (e.g. KS, AT, A, C) and 'domain' the matched family.
`
)
