package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateConfig keeps the user's real config file and environment out of
// root command tests.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "aqlwizard", cmd.Use)
	assert.Contains(t, cmd.Long, "AQL")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "operators", "fields", "saved", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestSavedSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"list", "show", "delete"} {
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{"saved", name})
			require.NoError(t, err)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	for _, name := range []string{"surface", "catalog", "lookups", "source", "save", "store", "entry"} {
		assert.NotNil(t, compileCmd.Flags().Lookup(name), "missing flag %s", name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, NewRootCommand(), "--format", "invalid", "operators")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootUsesConfigFile(t *testing.T) {
	isolateConfig(t)
	catalogPath := writeCatalog(t)
	configPath := writeFile(t, "aqlwizard.yaml", `
catalog:
  path: `+catalogPath+`
output:
  format: json
`)

	out, err := execute(t, NewRootCommand(),
		"--config", configPath,
		"compile", "--entry", "value=hostname contains web")
	require.NoError(t, err)

	var resp compileResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Queries, 1)
	assert.Equal(t, `(hostname == regex("web", "i"))`, resp.Data.Queries[0].Query.Query)
}

func TestRootFormatFlagOverridesConfig(t *testing.T) {
	isolateConfig(t)
	catalogPath := writeCatalog(t)
	configPath := writeFile(t, "aqlwizard.yaml", "catalog:\n  path: "+catalogPath+"\noutput:\n  format: json\n")

	out, err := execute(t, NewRootCommand(),
		"--config", configPath, "--format", "text",
		"compile", "--entry", "value=hostname contains web")
	require.NoError(t, err)
	assert.Equal(t, "(hostname == regex(\"web\", \"i\"))\n", out)
}

func TestRootEnvOverridesConfig(t *testing.T) {
	isolateConfig(t)
	db := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("AQLWIZARD_STORE_PATH", db)

	out, err := execute(t, NewRootCommand(), "saved", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved queries.")
	assert.FileExists(t, db)
}

func TestRootBadConfig(t *testing.T) {
	isolateConfig(t)
	configPath := writeFile(t, "aqlwizard.yaml", "log:\n  level: loud\n")

	_, err := execute(t, NewRootCommand(), "--config", configPath, "operators")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "loading config")
}
