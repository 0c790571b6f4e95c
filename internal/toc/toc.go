// Package toc expands the autogenerated table-of-contents placeholder.
package toc

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docserve/internal/slug"
)

// Token is the placeholder replaced by the generated list.
const Token = "<AUTOGENERATED_TABLE_OF_CONTENTS>"

// Only level-three headings whose text starts with a code span are collected.
var headingPattern = regexp.MustCompile("(?m)^###[ \t]+(`.*`.*?)\r?$")

// Headings returns the display text of every collected heading in document order.
func Headings(content string) []string {
	matches := headingPattern.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimRight(m[1], " \t"))
	}
	return out
}

// Expand replaces the first Token in content with a bullet list linking each collected
// heading. Content without the token is returned unchanged.
func Expand(content string) string {
	if !strings.Contains(content, Token) {
		return content
	}
	headings := Headings(content)
	items := make([]string, 0, len(headings))
	for _, h := range headings {
		items = append(items, "  - ["+h+"](#"+slug.Make(h)+")")
	}
	return strings.Replace(content, Token, strings.Join(items, "\n"), 1)
}
