package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCmd_Use(t *testing.T) {
	assert.Equal(t, "resolve [words...]", resolveCmd.Use)
}

func TestResolveCmd_Short(t *testing.T) {
	assert.Equal(t, "Resolve words to font variants", resolveCmd.Short)
}

func TestResolveCmd_Long(t *testing.T) {
	assert.Contains(t, resolveCmd.Long, "vetted")
	assert.Contains(t, resolveCmd.Long, "colour")
}

func TestResolveCmd_RequiresArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"resolve"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestResolveCmd_HasFlags(t *testing.T) {
	jsonFlag := resolveCmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag, "json flag should exist")
	assert.Equal(t, "false", jsonFlag.DefValue)

	phraseFlag := resolveCmd.Flags().Lookup("phrase")
	require.NotNil(t, phraseFlag, "phrase flag should exist")
	assert.Equal(t, "false", phraseFlag.DefValue)
}

func TestResolveCmd_ResolvesWords(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", "fire", "water"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "fire")
	assert.Contains(t, out, "water")
	assert.Contains(t, out, "Oswald")
	assert.Contains(t, out, "700")
	assert.Contains(t, out, "cache")
}

func TestResolveCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", "--json", "fire"})
	defer func() {
		rootCmd.SetArgs(nil)
		resolveJSON = false
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	var lines []resolvedLine
	require.NoError(t, json.Unmarshal(buf.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "fire", lines[0].Text)
	assert.Equal(t, "Oswald", lines[0].Family)
	assert.NotEmpty(t, lines[0].Colour)
}

func TestResolveCmd_PhraseMode(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"resolve", "--phrase", "new", "york"})
	defer func() {
		rootCmd.SetArgs(nil)
		resolveAsPhrase = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "new york")
}

func TestResolveCmd_NoResolverConfigured(t *testing.T) {
	previous := services
	services = Services{}
	defer func() { services = previous }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"resolve", "fire"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "resolver service not configured")
}
