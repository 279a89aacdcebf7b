package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"codeparity/internal/domain/valueobject"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func renderToBuffer(t *testing.T, result valueobject.ComparisonResult, format string) string {
	t.Helper()

	prev := compareOutput
	compareOutput = format
	t.Cleanup(func() { compareOutput = prev })

	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	require.NoError(t, renderResult(cmd, result))
	return out.String()
}

func unequalResult(t *testing.T) valueobject.ComparisonResult {
	t.Helper()
	lang, err := valueobject.NewLanguage("go")
	require.NoError(t, err)
	return valueobject.NewComparisonResult(lang, []string{
		`Node type mismatch at root: expected "function_declaration", got "var_declaration"`,
	}, false)
}

func TestRenderResult_Text(t *testing.T) {
	t.Run("equal", func(t *testing.T) {
		lang, err := valueobject.NewLanguage("go")
		require.NoError(t, err)
		output := renderToBuffer(t, valueobject.NewComparisonResult(lang, nil, false), "text")

		assert.Contains(t, output, "Equivalent (go)")
	})

	t.Run("unequal lists differences", func(t *testing.T) {
		output := renderToBuffer(t, unequalResult(t), "text")

		assert.Contains(t, output, "Not equivalent (go), 1 difference(s):")
		assert.Contains(t, output, "Node type mismatch at root")
	})
}

func TestRenderResult_JSON(t *testing.T) {
	output := renderToBuffer(t, unequalResult(t), "json")

	var decoded valueobject.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(output), &decoded))
	assert.False(t, decoded.Equal)
	assert.Len(t, decoded.Differences, 1)
	assert.Equal(t, "go", decoded.Language)
}

func TestRenderResult_YAML(t *testing.T) {
	output := renderToBuffer(t, unequalResult(t), "yaml")

	var decoded valueobject.ComparisonResult
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	assert.False(t, decoded.Equal)
	assert.Len(t, decoded.Differences, 1)
}

func resetCompareFlags(t *testing.T) {
	t.Helper()
	prevLanguage, prevExpected, prevActual := compareLanguage, compareExpected, compareActual
	t.Cleanup(func() {
		compareLanguage, compareExpected, compareActual = prevLanguage, prevExpected, prevActual
	})
}

func TestResolveCompareInputs(t *testing.T) {
	t.Run("inline sources with language", func(t *testing.T) {
		resetCompareFlags(t)
		cmd := newCompareCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--expected", "a b", "--actual", "ab", "--language", "go"}))

		expected, actual, language, err := resolveCompareInputs(cmd, nil)
		require.NoError(t, err)
		assert.Equal(t, "a b", expected)
		assert.Equal(t, "ab", actual)
		assert.Equal(t, "go", language)
	})

	t.Run("inline sources require language", func(t *testing.T) {
		resetCompareFlags(t)
		cmd := newCompareCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--expected", "a", "--actual", "b"}))

		_, _, _, err := resolveCompareInputs(cmd, nil)
		require.Error(t, err)
	})

	t.Run("files with language detected from extension", func(t *testing.T) {
		resetCompareFlags(t)
		dir := t.TempDir()
		expectedPath := dir + "/expected.go"
		actualPath := dir + "/actual.go"
		require.NoError(t, os.WriteFile(expectedPath, []byte("package main\n"), 0o600))
		require.NoError(t, os.WriteFile(actualPath, []byte("package  main\n"), 0o600))

		cmd := newCompareCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		expected, actual, language, err := resolveCompareInputs(cmd, []string{expectedPath, actualPath})
		require.NoError(t, err)
		assert.Equal(t, "package main\n", expected)
		assert.Equal(t, "package  main\n", actual)
		assert.Equal(t, "go", language)
	})

	t.Run("mixing files and inline flags rejected", func(t *testing.T) {
		resetCompareFlags(t)
		cmd := newCompareCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--expected", "a", "--language", "go"}))

		_, _, _, err := resolveCompareInputs(cmd, []string{"x.go", "y.go"})
		require.Error(t, err)
	})

	t.Run("missing file arguments rejected", func(t *testing.T) {
		resetCompareFlags(t)
		cmd := newCompareCmd()
		require.NoError(t, cmd.ParseFlags(nil))

		_, _, _, err := resolveCompareInputs(cmd, []string{"only.go"})
		require.Error(t, err)
	})
}

func TestRenderResult_UnknownFormat(t *testing.T) {
	prev := compareOutput
	compareOutput = "xml"
	t.Cleanup(func() { compareOutput = prev })

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	lang, err := valueobject.NewLanguage("go")
	require.NoError(t, err)
	require.Error(t, renderResult(cmd, valueobject.NewComparisonResult(lang, nil, false)))
}
