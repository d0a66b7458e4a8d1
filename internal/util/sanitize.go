package util

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeLine strips control and invisible characters and trims the result.
// It is meant for single-line input such as usernames and titles.
func SanitizeLine(value string) string {
	return sanitize(value, false)
}

// SanitizeText behaves like SanitizeLine but keeps newlines and tabs.
func SanitizeText(value string) string {
	return sanitize(value, true)
}

func sanitize(value string, multiline bool) string {
	if !utf8.ValidString(value) {
		value = strings.ToValidUTF8(value, "")
	}

	builder := strings.Builder{}
	builder.Grow(len(value))

	for _, char := range value {
		if multiline && (char == '\n' || char == '\t') {
			builder.WriteRune(char)
			continue
		}
		if char == '\r' && multiline {
			continue
		}
		if unicode.IsControl(char) || isInvisibleUnicode(char) {
			continue
		}

		builder.WriteRune(char)
	}

	return strings.TrimSpace(builder.String())
}

// RuneLen counts characters rather than bytes.
func RuneLen(value string) int {
	return utf8.RuneCountInString(value)
}

// isInvisibleUnicode returns true for zero-width, formatting and other
// invisible characters that would let two visually identical names differ.
func isInvisibleUnicode(r rune) bool {
	switch r {
	case
		'\u200B', // Zero-Width Space
		'\u200C', // Zero-Width Non-Joiner
		'\u200D', // Zero-Width Joiner
		'\u200E', // Left-to-Right Mark
		'\u200F', // Right-to-Left Mark
		'\u2060', // Word Joiner
		'\uFEFF', // Zero-Width No-Break Space / BOM
		'\uFFF9', // Interlinear Annotation Anchor
		'\uFFFA', // Interlinear Annotation Separator
		'\uFFFB': // Interlinear Annotation Terminator
		return true
	}

	return unicode.Is(unicode.Cf, r)
}
