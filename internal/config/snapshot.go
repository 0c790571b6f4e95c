package config

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of the configuration. Map fields are hashed in key
// order so that two loads of the same files always produce the same value.
func (s *Site) Snapshot() string {
	if s == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) { h.Write([]byte(strings.Join(parts, "="))); h.Write([]byte{0}) }

	w("title", s.Title)
	w("tagline", s.Tagline)
	w("url", s.URL)
	w("base_url", s.BaseURL)
	w("custom_docs_path", s.CustomDocsPath)
	w("wrap_pages_html", strconv.FormatBool(s.WrapPagesHTML))
	w("enable_update_time", strconv.FormatBool(s.EnableUpdateTime))
	w("blog_posts_per_page", strconv.Itoa(s.BlogPostsPerPage))
	for _, k := range slices.Sorted(maps.Keys(s.Colors)) {
		w("colors."+k, s.Colors[k])
	}
	for _, k := range slices.Sorted(maps.Keys(s.Fonts)) {
		w("fonts."+k, strings.Join(s.Fonts[k], ","))
	}
	for _, k := range slices.Sorted(maps.Keys(s.Layouts)) {
		w("layouts."+k, s.Layouts[k])
	}
	w("separate_css", strings.Join(s.SeparateCSS, ","))
	for _, l := range s.Languages {
		w("language", l.Tag, l.Name, strconv.FormatBool(l.Enabled))
	}
	w("versions", strings.Join(s.Versions, ","))
	return hex.EncodeToString(h.Sum(nil))
}
