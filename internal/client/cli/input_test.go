package cli

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("hello world\n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.Error(t, err)
}

func TestGetDefault(t *testing.T) {
	var out bytes.Buffer
	got, err := GetDefault(rdr("\n"), "City", "Springfield", &out)
	require.NoError(t, err)
	assert.Equal(t, "Springfield", got)
	assert.Contains(t, out.String(), "City [Springfield]")

	got, err = GetDefault(rdr("Riverside\n"), "City", "Springfield", &out)
	require.NoError(t, err)
	assert.Equal(t, "Riverside", got)
}

func TestGetAmount_RetriesUntilValid(t *testing.T) {
	var out bytes.Buffer
	got, err := GetAmount(rdr("lots\n$1,250.5\n"), "Budget", decimal.Zero, &out)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("1250.5")))
	assert.Contains(t, out.String(), "Not an amount: lots")

	got, err = GetAmount(rdr("\n"), "Budget", decimal.NewFromInt(7), &out)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(7)))
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "sure\n": false} {
		got, err := Confirm(rdr(in), "Proceed?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestGetMultiline_StopsOnEmptyLineOrEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetMultiline(rdr("a\nb\n\nc\n"), "Items", &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	got, err = GetMultiline(rdr("only"), "Items", &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "Kitch…", truncate("Kitchen Renovation", 6))
	assert.Equal(t, "…", truncate("abc", 1))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestTerminalWidth_FallsBack(t *testing.T) {
	orig := terminalSize
	t.Cleanup(func() { terminalSize = orig })

	terminalSize = func(int) (int, int, error) { return 0, 0, assert.AnError }
	assert.Equal(t, defaultWidth, terminalWidth())

	terminalSize = func(int) (int, int, error) { return 160, 40, nil }
	assert.Equal(t, 160, terminalWidth())
}
