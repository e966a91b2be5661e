package stringutil

import (
	"bytes"
	"strings"
	"unicode"
)

func PascalToSnake(s string) string {
	var b bytes.Buffer

	for i, c := range s {
		if unicode.IsUpper(c) {
			if i > 0 && (unicode.IsLower(rune(s[i-1])) || (i+1 < len(s) && unicode.IsLower(rune(s[i+1])))) {
				b.WriteByte('_')
			}

			b.WriteRune(unicode.ToLower(c))
		} else {
			b.WriteRune(c)
		}
	}

	return b.String()
}

func LooksTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on", "enabled", "enable", "active", "ok", "okay":
		return true
	default:
		return false
	}
}

// Truncate cuts s to at most n characters (runes, not bytes) and appends
// suffix when anything was removed.
func Truncate(s string, n int, suffix string) string {
	if n < 0 {
		n = 0
	}

	count := 0
	for i := range s {
		if count == n {
			return s[:i] + suffix
		}
		count++
	}

	return s
}

// SplitList splits a comma separated list, dropping blank entries.
func SplitList(s string) []string {
	var a []string

	for _, e := range strings.Split(s, ",") {
		if e = strings.TrimSpace(e); e != "" {
			a = append(a, e)
		}
	}

	return a
}
