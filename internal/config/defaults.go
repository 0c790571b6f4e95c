package config

import "strings"

const (
	defaultDocsPath         = "docs"
	defaultBaseURL          = "/"
	defaultBlogPostsPerPage = 10
)

func applyDefaults(s *Site) {
	if s.BaseURL == "" {
		s.BaseURL = defaultBaseURL
	}
	if s.CustomDocsPath == "" {
		s.CustomDocsPath = defaultDocsPath
	}
	s.CustomDocsPath = strings.Trim(s.CustomDocsPath, "/")
	if s.BlogPostsPerPage <= 0 {
		s.BlogPostsPerPage = defaultBlogPostsPerPage
	}
	if s.Colors == nil {
		s.Colors = map[string]string{}
	}
	for i := range s.Languages {
		s.Languages[i].Tag = strings.TrimSpace(s.Languages[i].Tag)
	}
}
