package blog

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
)

// TargetKind tells whether a blog path names a listing page or a post.
type TargetKind string

const (
	TargetPage TargetKind = "page"
	TargetPost TargetKind = "post"
)

// Target is a resolved blog path.
type Target struct {
	Kind TargetKind
	Page *Page
	// PostPath is the URL path below blog/ and PostFile the Markdown file backing it.
	PostPath string
	PostFile string
}

var pagePattern = regexp.MustCompile(`^page([0-9]+)(/|/index\.html)?$`)

// Resolve maps subpath, the URL path below blog/, to a page or post.
//
//   - "index.html" is page 0, also when there are no posts at all.
//   - "page<N>/index.html", "page<N>/" and "page<N>" are page N-1; out of range is not found.
//   - any other ".../index.html" is looked up by exact key.
//   - everything else is a post: "2017/12/14/hello.html" reads blog/2017-12-14-hello.md.
//     A missing file is not found.
func Resolve(subpath string, p *Pagination, blogRoot string) (Target, error) {
	subpath = strings.TrimPrefix(subpath, "/")

	if subpath == "index.html" {
		if page, ok := p.Page(0); ok {
			return Target{Kind: TargetPage, Page: page}, nil
		}
		return Target{Kind: TargetPage, Page: &Page{PerPage: p.PerPage, Key: PageKey(0)}}, nil
	}

	if m := pagePattern.FindStringSubmatch(subpath); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 {
			if page, ok := p.Page(n - 1); ok {
				return Target{Kind: TargetPage, Page: page}, nil
			}
		}
		return Target{}, derrors.NotFoundError("blog page out of range").WithContext("path", subpath).Build()
	}

	if strings.HasSuffix(subpath, "/index.html") {
		if page, ok := p.Lookup(subpath); ok {
			return Target{Kind: TargetPage, Page: page}, nil
		}
		return Target{}, derrors.NotFoundError("blog page not found").WithContext("path", subpath).Build()
	}

	name := PostFileName(subpath)
	if name == "" {
		return Target{}, derrors.NotFoundError("blog post not found").WithContext("path", subpath).Build()
	}
	file := filepath.Join(blogRoot, name)
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return Target{}, derrors.NotFoundError("blog post not found").
			WithContext("path", subpath).WithContext("file", file).Build()
	}
	return Target{Kind: TargetPost, PostPath: subpath, PostFile: file}, nil
}

// PostFileName derives the Markdown file name of a post URL path: ".html" is stripped,
// "/" becomes "-" and ".md" is appended. It returns "" for paths that cannot name a post.
func PostFileName(subpath string) string {
	base := strings.TrimSuffix(subpath, ".html")
	base = strings.ReplaceAll(base, "/", "-")
	if base == "" || strings.Contains(base, "..") || strings.ContainsAny(base, `\`) {
		return ""
	}
	return base + ".md"
}
