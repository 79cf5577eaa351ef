package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/speakmath/internal/core/domain"
)

func TestTokensCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "", "tokens")

	require.NoError(t, err)
	assert.Equal(t, "No unrecognized tokens recorded.\n", out)
}

func TestTokensCmd_ListsAfterConvert(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "", "convert", "-d", "general", `\foo + x`)
	require.NoError(t, err)
	resetFlags()

	out, _, err := run(t, "", "tokens")

	require.NoError(t, err)
	assert.Contains(t, out, `\foo`)
	assert.Contains(t, out, "[general]")
	assert.Contains(t, out, `\foo + x`)
}

func TestTokensCmd_JSON(t *testing.T) {
	setupTestServices(t)

	out, _, err := run(t, "", "tokens", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, _, err = run(t, "", "convert", "-d", "general", `\foo \bar`)
	require.NoError(t, err)

	out, _, err = run(t, "", "tokens", "--json", "-n", "1")
	require.NoError(t, err)

	var records []domain.TokenRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 1)
}

func TestTokensCmd_Clear(t *testing.T) {
	setupTestServices(t)

	_, _, err := run(t, "", "convert", "-d", "general", `\foo`)
	require.NoError(t, err)

	out, _, err := run(t, "", "tokens", "clear")
	require.NoError(t, err)
	assert.Equal(t, "Token log cleared.\n", out)

	out, _, err = run(t, "", "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "No unrecognized tokens recorded.")
}

func TestTokensCmd_NoService(t *testing.T) {
	setupTestServices(t)
	SetServices(Services{})

	_, _, err := run(t, "", "tokens")
	assert.EqualError(t, err, "token log not configured")

	_, _, err = run(t, "", "tokens", "clear")
	assert.EqualError(t, err, "token log not configured")
}
