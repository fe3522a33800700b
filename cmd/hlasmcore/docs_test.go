package hlasmcore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocsCmdWritesToStdoutByDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, docsCmd.Flags().Set("output", ""))
	docsCmd.SetOut(&buf)

	err := docsCmd.RunE(docsCmd, []string{"instructions"})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "total instructions:")
}

func TestDocsCmdWritesToOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.txt")
	require.NoError(t, docsCmd.Flags().Set("output", path))
	defer docsCmd.Flags().Set("output", "")

	err := docsCmd.RunE(docsCmd, []string{"instructions"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "total instructions:")
}

func TestSupportedDocModulesListsInstructions(t *testing.T) {
	_, ok := supportedDocModules["instructions"]
	require.True(t, ok)
}
