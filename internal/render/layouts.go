package render

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/page"
)

//go:embed templates/*.html
var templateFS embed.FS

var defaultLayoutFiles = map[page.Kind]string{
	page.KindDoc:      "templates/doc.html",
	page.KindBlogPost: "templates/blog_post.html",
	page.KindBlogPage: "templates/blog_page.html",
	page.KindPage:     "templates/page.html",
}

// Registry maps layout names to parsed templates. Every kind has a default layout
// that is used when a payload names no layout or an unknown one.
type Registry struct {
	defaults map[page.Kind]*template.Template
	named    map[string]*template.Template
}

// NewRegistry parses the built-in layouts and the site's custom layouts. Custom layout
// files are resolved against websiteDir and define a "content" block inside the site
// frame. A custom layout that cannot be read or parsed is a configuration error.
func NewRegistry(websiteDir string, custom map[string]string) (*Registry, error) {
	base, err := template.New("site").Funcs(placeholderFuncs).ParseFS(templateFS, "templates/site.html")
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryInternal, "parse site layout").Build()
	}

	r := &Registry{defaults: map[page.Kind]*template.Template{}, named: map[string]*template.Template{}}
	for kind, file := range defaultLayoutFiles {
		t, err := template.Must(base.Clone()).ParseFS(templateFS, file)
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryInternal, "parse layout").WithContext("layout", string(kind)).Build()
		}
		r.defaults[kind] = t
	}

	for name, file := range custom {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(websiteDir, file)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "read custom layout").
				Fatal().WithContext("layout", name).WithContext("path", path).Build()
		}
		t, err := template.Must(base.Clone()).New(name).Parse(string(data))
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "parse custom layout").
				Fatal().WithContext("layout", name).WithContext("path", path).Build()
		}
		r.named[name] = t.Lookup("site")
	}
	return r, nil
}

// Lookup returns the layout called name, falling back to the default layout of kind.
func (r *Registry) Lookup(kind page.Kind, name string) *template.Template {
	if name != "" {
		if t, ok := r.named[name]; ok {
			return t
		}
	}
	if t, ok := r.defaults[kind]; ok {
		return t
	}
	return r.defaults[page.KindPage]
}

// Has reports whether a custom layout called name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.named[name]
	return ok
}

// Names returns the custom layout names.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.named))
	for n := range r.named {
		out = append(out, n)
	}
	return out
}

func (r *Registry) String() string {
	return fmt.Sprintf("layouts(%d custom)", len(r.named))
}
