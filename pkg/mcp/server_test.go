package mcp_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/macropower/synthaser/pkg/mcp"
	"github.com/macropower/synthaser/pkg/runner"
)

const testDocument = `- header: pks
  sequence: MKKLLAAVVG
  domains:
    - type: KS
      domain: PKS_KS
      start: 1
      end: 4
    - type: AT
      domain: PKS_AT
      start: 6
      end: 9
- header: nrps
  domains:
    - type: A
      domain: AMP-binding
      start: 1
      end: 400
    - type: C
      domain: Condensation
      start: 500
      end: 800
`

func newTestSession(t *testing.T, initialPath string) *sdk.ClientSession {
	t.Helper()

	r, err := runner.New(nil)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	testServer := mcp.NewServer("", r, initialPath)

	ctx := t.Context()
	clientTransport, serverTransport := sdk.NewInMemoryTransports()

	serverSession, err := testServer.Server().Connect(ctx, serverTransport)
	require.NoError(t, err)

	client := sdk.NewClient(&sdk.Implementation{Name: "client"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, clientSession.Close())
		assert.NoError(t, serverSession.Wait())
	})

	return clientSession
}

func callTool(t *testing.T, cs *sdk.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()

	r, err := cs.CallTool(t.Context(), &sdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, r)
	require.False(t, r.IsError, "tool call failed: %v", r.Content)

	content, ok := r.StructuredContent.(map[string]any)
	require.True(t, ok, "StructuredContent should be a map[string]any")

	return content
}

func TestServer_Classify(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "synthases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o600))

	cs := newTestSession(t, "")

	tcs := map[string]struct {
		args map[string]any
		want map[string]any
	}{
		"path": {
			args: map[string]any{"path": path},
			want: map[string]any{
				"message": "Classified 2 synthases, reporting 2.",
				"total":   float64(2),
				"synthases": []any{
					map[string]any{
						"header":         "pks",
						"architecture":   "KS-AT",
						"classification": []any{"PKS", "NR-PKS"},
						"length":         float64(10),
					},
					map[string]any{
						"header":         "nrps",
						"architecture":   "A-C",
						"classification": []any{"NRPS"},
						"length":         float64(0),
					},
				},
			},
		},
		"document with where": {
			args: map[string]any{
				"document": testDocument,
				"where":    `"NRPS" in classification`,
			},
			want: map[string]any{
				"message": "Classified 2 synthases, reporting 1.",
				"total":   float64(2),
				"synthases": []any{
					map[string]any{
						"header":         "nrps",
						"architecture":   "A-C",
						"classification": []any{"NRPS"},
						"length":         float64(0),
					},
				},
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, callTool(t, cs, "classify", tc.args))
		})
	}
}

func TestServer_ClassifyInitialPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "synthases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o600))

	cs := newTestSession(t, path)

	got := callTool(t, cs, "classify", map[string]any{})
	assert.InDelta(t, 2, got["total"], 0)
}

func TestServer_ClassifyInvalidInput(t *testing.T) {
	t.Parallel()

	cs := newTestSession(t, "")

	tcs := map[string]map[string]any{
		"no input":         {},
		"invalid where":    {"document": testDocument, "where": "header +"},
		"invalid document": {"document": "- header: x\n  domains: [{type: KS}]\n"},
	}

	for name, args := range tcs {
		t.Run(name, func(t *testing.T) {
			r, err := cs.CallTool(t.Context(), &sdk.CallToolParams{
				Name:      "classify",
				Arguments: args,
			})
			if err == nil {
				assert.True(t, r.IsError)
			}
		})
	}
}

func TestServer_GetSynthase(t *testing.T) {
	t.Parallel()

	cs := newTestSession(t, "")

	callTool(t, cs, "classify", map[string]any{"document": testDocument})

	got := callTool(t, cs, "get_synthase", map[string]any{"header": "pks"})
	assert.Equal(t, map[string]any{
		"found":   true,
		"message": "Found synthase pks.",
		"synthase": map[string]any{
			"header":         "pks",
			"architecture":   "KS-AT",
			"classification": []any{"PKS", "NR-PKS"},
			"length":         float64(10),
			"domains": []any{
				map[string]any{"type": "KS", "domain": "PKS_KS", "start": float64(1), "end": float64(4)},
				map[string]any{"type": "AT", "domain": "PKS_AT", "start": float64(6), "end": float64(9)},
			},
		},
	}, got)

	got = callTool(t, cs, "get_synthase", map[string]any{"header": "missing"})
	assert.Equal(t, map[string]any{
		"found":   false,
		"message": `INVALID INPUT ERROR: Synthase "missing" not found. Use an EXACT header from the classify tool.`,
	}, got)
}

func TestServer_ListRules(t *testing.T) {
	t.Parallel()

	cs := newTestSession(t, "")

	got := callTool(t, cs, "list_rules", map[string]any{})

	rules, ok := got["rules"].([]any)
	require.True(t, ok)
	assert.Len(t, rules, 9)

	paths, ok := got["paths"].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{
		"Hybrid",
		"PKS",
		"PKS > HR-PKS",
		"PKS > PR-PKS",
		"PKS > NR-PKS",
		"PKS > PKS fragment",
		"NRPS",
		"NRPS-like",
		"NRPS fragment",
	}, paths)
	assert.Equal(t, "Found 9 rules and 9 classification paths.", got["message"])
}
