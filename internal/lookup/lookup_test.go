package lookup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

func TestMemoizeFetchesOnce(t *testing.T) {
	var tagCalls, srcCalls, labelCalls int
	p := Funcs{
		TagsFunc: func() ([]string, error) {
			tagCalls++
			return []string{"Production"}, nil
		},
		DataSourcesFunc: func() ([]Choice, error) {
			srcCalls++
			return []Choice{{Name: "aws", Raw: "aws_adapter"}}, nil
		},
		ConnectionLabelsFunc: func() ([]string, error) {
			labelCalls++
			return []string{"corp", "lab", "corp", ""}, nil
		},
	}

	m := Memoize(p)
	for i := 0; i < 3; i++ {
		tags, err := m.Tags()
		require.NoError(t, err)
		assert.Equal(t, []string{"Production"}, tags)

		srcs, err := m.DataSources()
		require.NoError(t, err)
		assert.Equal(t, "aws_adapter", srcs[0].Raw)

		labels, err := m.ConnectionLabels()
		require.NoError(t, err)
		assert.Equal(t, []string{"corp", "lab"}, labels)
	}

	assert.Equal(t, 1, tagCalls)
	assert.Equal(t, 1, srcCalls)
	assert.Equal(t, 1, labelCalls)
}

func TestMemoizeKeepsError(t *testing.T) {
	calls := 0
	boom := errors.New("fetch failed")
	m := Memoize(Funcs{TagsFunc: func() ([]string, error) {
		calls++
		return nil, boom
	}})

	_, err := m.Tags()
	require.ErrorIs(t, err, boom)
	_, err = m.Tags()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestFuncsNilAccessors(t *testing.T) {
	var f Funcs
	tags, err := f.Tags()
	require.NoError(t, err)
	assert.Empty(t, tags)

	srcs, err := f.DataSources()
	require.NoError(t, err)
	assert.Empty(t, srcs)
}

func TestParseYAML(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, s Static)
	}{
		{
			name: "full document",
			input: `
tags: [Production, Staging]
data_sources:
  - {name: aws, raw: aws_adapter}
connection_labels: [corp-aws, corp-aws, lab]
`,
			check: func(t *testing.T, s Static) {
				assert.Equal(t, []string{"Production", "Staging"}, s.TagList)
				labels, _ := s.ConnectionLabels()
				assert.Equal(t, []string{"corp-aws", "lab"}, labels)
			},
		},
		{
			name:  "empty document",
			input: "",
			check: func(t *testing.T, s Static) {
				assert.Empty(t, s.TagList)
			},
		},
		{
			name:    "unknown key",
			input:   "labels: [a]\n",
			wantErr: true,
		},
		{
			name:    "data source without raw",
			input:   "data_sources:\n  - {name: aws}\n",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := ParseYAML([]byte(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, wizerr.Is(err, wizerr.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			tc.check(t, s)
		})
	}
}

func TestLoadYAMLMissingFile(t *testing.T) {
	s, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.TagList)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lookups.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tags: [a, b]\n"), 0644))

	s, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, s.TagList)
}
