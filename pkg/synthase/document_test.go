package synthase_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/synthaser/pkg/domain"
	"github.com/macropower/synthaser/pkg/synthase"
	"github.com/macropower/synthaser/pkg/yaml"
)

const testDocument = `- header: seq1
  sequence: MKTAYIAKQR
  domains:
    - type: KS
      domain: PKS_KS
      start: 1
      end: 5
    - type: AT
      domain: PKS_AT
      start: 6
      end: 10
- header: seq2
  domains: []
`

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := synthase.Parse([]byte(testDocument))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "seq1", got[0].Header)
	assert.Equal(t, []*domain.Hit{
		domain.New("KS", "PKS_KS", 1, 5),
		domain.New("AT", "PKS_AT", 6, 10),
	}, got[0].Domains)
	assert.Empty(t, got[1].Domains)
}

func TestParse_JSON(t *testing.T) {
	t.Parallel()

	got, err := synthase.Parse([]byte(`[{"header": "seq1", "domains": [{"type": "KS", "domain": "PKS_KS", "start": 1, "end": 5}]}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "KS", got[0].Architecture())
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		data     string
		wantPath string
	}{
		"not a list": {
			data:     "header: seq1\ndomains: []\n",
			wantPath: "$",
		},
		"missing header": {
			data:     "- domains: []\n",
			wantPath: "$[0]",
		},
		"start below one": {
			data:     "- header: seq1\n  domains:\n    - {type: KS, domain: PKS_KS, start: 0, end: 5}\n",
			wantPath: "$[0].domains[0].start",
		},
		"end before start": {
			data:     "- header: seq1\n  domains:\n    - {type: KS, domain: PKS_KS, start: 9, end: 5}\n",
			wantPath: "$[0].domains[0]",
		},
		"unknown field": {
			data:     "- header: seq1\n  domains: []\n  type: PKS\n",
			wantPath: "$[0]",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := synthase.Parse([]byte(tc.data))

			var yamlErr *yaml.Error
			require.ErrorAs(t, err, &yamlErr)
			require.NotNil(t, yamlErr.Path)
			assert.Equal(t, tc.wantPath, yamlErr.Path.String())
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "synthases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o600))

	got, err := synthase.Load(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = synthase.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	assert.Contains(t, string(synthase.Schema()), `"$defs"`)
}
