package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/aqlwizard/internal/operators"
)

func TestOperators_ListText(t *testing.T) {
	out, err := execute(t, NewOperatorsCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "string (string/-/-/-)\n  exists, regex, contains, equals, startswith, endswith, in\n")
	assert.Contains(t, out, "boolean (bool/-/-/-)")
	assert.Contains(t, out, "array_discrete_string_logo (array/discrete/string/logo)")
}

func TestOperators_ListJSON(t *testing.T) {
	out, err := execute(t, NewOperatorsCommand(&RootOptions{Format: "json"}))
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   []ProfileView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, len(operators.Default().Profiles()))

	for _, p := range resp.Data {
		if p.Name == "string_ip" {
			assert.Equal(t, "string", p.Type)
			assert.Equal(t, "ip", p.Format)
			assert.NotEmpty(t, p.Operators)
			return
		}
	}
	t.Fatal("string_ip profile not listed")
}

func TestOperators_Profile(t *testing.T) {
	out, err := execute(t, NewOperatorsCommand(&RootOptions{Format: "text"}), "string")
	require.NoError(t, err)
	assert.Contains(t, out, "string (string/-/-/-)")
	assert.Contains(t, out, `({field} == regex("{value}", "i"))`)
}

func TestOperators_UnknownProfile(t *testing.T) {
	out, err := execute(t, NewOperatorsCommand(&RootOptions{Format: "text"}), "strang")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeUnknownTopic)
	assert.Contains(t, out, `unknown profile "strang"`)
}
