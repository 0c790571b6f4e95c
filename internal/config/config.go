package config

import (
	"path/filepath"
	"slices"
)

// File names looked up in the website directory.
const (
	SiteConfigFile = "siteConfig.yaml"
	LanguagesFile  = "languages.yaml"
	VersionsFile   = "versions.json"
)

// DefaultLanguage is the language of canonical content.
const DefaultLanguage = "en"

// Site is the site configuration. A Site is immutable once Load returns it;
// a reload always builds a new value.
type Site struct {
	Title       string `yaml:"title"`
	Tagline     string `yaml:"tagline"`
	URL         string `yaml:"url"`
	BaseURL     string `yaml:"base_url"`
	ProjectName string `yaml:"project_name"`

	// CustomDocsPath is the docs directory relative to the parent of the website directory.
	CustomDocsPath string `yaml:"custom_docs_path"`

	Colors      map[string]string   `yaml:"colors"`
	Fonts       map[string][]string `yaml:"fonts"`
	SeparateCSS []string            `yaml:"separate_css"`

	// Layouts maps a layout name to a template file relative to the website directory.
	Layouts map[string]string `yaml:"layouts"`

	WrapPagesHTML    bool `yaml:"wrap_pages_html"`
	EnableUpdateTime bool `yaml:"enable_update_time"`
	BlogPostsPerPage int  `yaml:"blog_posts_per_page"`

	// Populated from languages.yaml and versions.json.
	Languages []Language `yaml:"-"`
	Versions  []string   `yaml:"-"`
}

// Language is one entry of languages.yaml.
type Language struct {
	Tag     string `yaml:"tag"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// TranslationEnabled reports whether the site ships translated content.
func (s *Site) TranslationEnabled() bool {
	return len(s.Languages) > 0
}

// VersioningEnabled reports whether the site ships versioned content.
func (s *Site) VersioningEnabled() bool {
	return len(s.Versions) > 0
}

// LatestVersion returns the newest released version, or "" when unversioned.
func (s *Site) LatestVersion() string {
	if len(s.Versions) == 0 {
		return ""
	}
	return s.Versions[0]
}

// EnabledLanguages returns the tags of all enabled languages in declaration order.
func (s *Site) EnabledLanguages() []string {
	tags := make([]string, 0, len(s.Languages))
	for _, l := range s.Languages {
		if l.Enabled {
			tags = append(tags, l.Tag)
		}
	}
	return tags
}

// LanguageEnabled reports whether tag is an enabled language.
func (s *Site) LanguageEnabled(tag string) bool {
	return slices.Contains(s.EnabledLanguages(), tag)
}

// Roots are the absolute content directories of a site.
type Roots struct {
	Website    string
	Docs       string
	Versioned  string
	Translated string
	Blog       string
	Pages      string
	Static     string
}

// RootsFor derives the content roots from the website directory.
func RootsFor(websiteDir string, s *Site) Roots {
	website, err := filepath.Abs(websiteDir)
	if err != nil {
		website = filepath.Clean(websiteDir)
	}
	docsPath := s.CustomDocsPath
	if docsPath == "" {
		docsPath = defaultDocsPath
	}
	return Roots{
		Website:    website,
		Docs:       filepath.Join(filepath.Dir(website), docsPath),
		Versioned:  filepath.Join(website, "versioned_docs"),
		Translated: filepath.Join(website, "translated_docs"),
		Blog:       filepath.Join(website, "blog"),
		Pages:      filepath.Join(website, "pages"),
		Static:     filepath.Join(website, "static"),
	}
}
