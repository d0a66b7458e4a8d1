package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeLine(t *testing.T) {
	t.Parallel()

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		require.Equal(t, "alice", SanitizeLine("  alice \t"))
	})

	t.Run("strips control characters and newlines", func(t *testing.T) {
		require.Equal(t, "ab", SanitizeLine("a\x00\nb\x07"))
	})

	t.Run("strips zero-width characters", func(t *testing.T) {
		require.Equal(t, "alice", SanitizeLine("al\u200Bi\uFEFFce"))
	})

	t.Run("drops invalid utf8", func(t *testing.T) {
		require.Equal(t, "bob", SanitizeLine("b\xffob"))
	})

	t.Run("keeps non-latin text", func(t *testing.T) {
		require.Equal(t, "Halo dunia ✓", SanitizeLine("Halo dunia ✓"))
	})
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	require.Equal(t, "line one\n\tline two", SanitizeText("  line one\r\n\tline two\u200D  "))
	require.Empty(t, SanitizeText("\u200B \n "))
}

func TestRuneLen(t *testing.T) {
	t.Parallel()

	require.Equal(t, 5, RuneLen("héllo"))
	require.Equal(t, 0, RuneLen(""))
}
