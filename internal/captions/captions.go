package captions

import (
	"strings"

	"fknsrs.biz/p/ytreport/internal/locale"
)

const maxListed = 3

var regionalVariants = map[string][]string{
	"ko": {"ko-KR"},
	"en": {"en-US", "en-GB"},
	"ja": {"ja-JP"},
	"zh": {"zh-Hans", "zh-Hant"},
	"es": {"es-419", "es-ES"},
	"pt": {"pt-BR", "pt-PT"},
}

// Priorities expands base language codes into the ordered list consulted by
// Summarize, each base code followed by its regional variants.
func Priorities(languages []string) []string {
	var a []string
	seen := make(map[string]bool)

	add := func(lang string) {
		if lang == "" || seen[lang] {
			return
		}
		seen[lang] = true
		a = append(a, lang)
	}

	for _, lang := range languages {
		lang = strings.TrimSpace(lang)
		add(lang)
		for _, variant := range regionalVariants[lang] {
			add(variant)
		}
	}

	return a
}

// Summarize returns a one-line description of the available caption tracks.
// A declared track in a priority language wins over an automatic one; after
// that, up to three declared codes are listed, then up to three automatic
// ones.
func Summarize(declared, automatic, priorities []string, c *locale.Catalog) string {
	if lang, ok := firstPriority(declared, priorities); ok {
		return c.FormatCaptionsAvailable(lang)
	}

	if lang, ok := firstPriority(automatic, priorities); ok {
		return c.FormatAutoCaptionsAvailable(lang)
	}

	if len(declared) > 0 {
		return c.FormatCaptionsList(head(declared, maxListed))
	}

	if len(automatic) > 0 {
		return c.FormatAutoCaptionsList(head(automatic, maxListed))
	}

	return c.NoCaptions
}

func firstPriority(available, priorities []string) (string, bool) {
	for _, lang := range priorities {
		for _, e := range available {
			if e == lang {
				return lang, true
			}
		}
	}

	return "", false
}

func head(a []string, n int) []string {
	if len(a) > n {
		return a[:n]
	}

	return a
}
