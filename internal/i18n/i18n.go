// Package i18n selects the request language from URL paths.
package i18n

import (
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docserve/internal/config"
)

// LanguageFromPath returns the enabled language tag named by the last matching path
// segment. Without a match it is "en" on translated sites and empty otherwise.
func LanguageFromPath(p string, site *config.Site) string {
	if !site.TranslationEnabled() {
		return ""
	}
	segs := strings.Split(strings.Trim(p, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if tag, ok := Match(segs[i], site); ok {
			return tag
		}
	}
	return config.DefaultLanguage
}

// Match reports the configured tag a segment names. Tags compare in canonical form,
// so "zh-cn" matches a configured "zh-CN".
func Match(seg string, site *config.Site) (string, bool) {
	if seg == "" || strings.Contains(seg, ".") {
		return "", false
	}
	want, err := language.Parse(seg)
	if err != nil {
		return "", false
	}
	for _, tag := range site.EnabledLanguages() {
		have, err := language.Parse(tag)
		if err != nil {
			if strings.EqualFold(tag, seg) {
				return tag, true
			}
			continue
		}
		if have.String() == want.String() {
			return tag, true
		}
	}
	return "", false
}

// EnglishPath swaps the last language segment of p for "en". ok is false when p names
// no language or already is English.
func EnglishPath(p string, site *config.Site) (string, bool) {
	segs := strings.Split(p, "/")
	for i := len(segs) - 1; i >= 0; i-- {
		tag, ok := Match(segs[i], site)
		if !ok {
			continue
		}
		if tag == config.DefaultLanguage {
			return "", false
		}
		segs[i] = config.DefaultLanguage
		return strings.Join(segs, "/"), true
	}
	return "", false
}
