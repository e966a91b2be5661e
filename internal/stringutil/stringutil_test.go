package stringutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var caseConversionTests = []struct {
	pascalCase string
	snakeCase  string
}{
	{"ID", "id"},
	{"LogLevel", "log_level"},
	{"OutputDir", "output_dir"},
	{"HTTPCachePath", "http_cache_path"},
	{"HTTPCacheRFC", "http_cache_rfc"},
	{"YTDLPProgram", "ytdlp_program"},
	{"MetadataProvider", "metadata_provider"},
	{"TemplateDir", "template_dir"},
}

func TestPascalToSnake(t *testing.T) {
	for _, tc := range caseConversionTests {
		t.Run(tc.pascalCase, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.snakeCase, PascalToSnake(tc.pascalCase))
		})
	}
}

func BenchmarkPascalToSnake(b *testing.B) {
	for _, tc := range caseConversionTests {
		b.Run(tc.pascalCase, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				PascalToSnake(tc.pascalCase)
			}
		})
	}
}

func TestLooksTrue(t *testing.T) {
	a := assert.New(t)

	for _, s := range []string{"true", "YES", " 1 ", "on", "enabled"} {
		a.True(LooksTrue(s), s)
	}

	for _, s := range []string{"", "false", "0", "off", "nope"} {
		a.False(LooksTrue(s), s)
	}
}

func TestTruncate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		n      int
		suffix string
		want   string
	}{
		{"shorter", "abc", 5, "...", "abc"},
		{"exact", "abcde", 5, "...", "abcde"},
		{"longer", "abcdef", 5, "...", "abcde..."},
		{"no suffix", "abcdef", 3, "", "abc"},
		{"zero", "abc", 0, "!", "!"},
		{"empty", "", 0, "!", ""},
		{"runes", "가나다라", 2, "…", "가나…"},
		{"long runes", strings.Repeat("한", 10001), 10000, "", strings.Repeat("한", 10000)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := assert.New(t)
			a.Equal(tc.want, Truncate(tc.input, tc.n, tc.suffix))
		})
	}
}

func TestSplitList(t *testing.T) {
	a := assert.New(t)

	a.Equal([]string{"ko", "en"}, SplitList("ko, en"))
	a.Equal([]string{"ko"}, SplitList(" ,ko,, "))
	a.Nil(SplitList(""))
}
