package content

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/frontmatter"
	"git.home.luguber.info/inful/docserve/internal/logfields"
)

var postFilename = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)\.md$`)

// PostPath maps a blog file name to its URL path below blog/:
// "2017-12-14-hello.md" becomes "2017/12/14/hello.html".
func PostPath(filename string) (string, bool) {
	m := postFilename.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1] + "/" + m[2] + "/" + m[3] + "/" + m[4] + ".html", true
}

// PostFromDocument builds a post from parsed file content.
func PostFromDocument(filename string, doc *frontmatter.Document) (*BlogPost, bool) {
	p, ok := PostPath(filename)
	if !ok {
		return nil, false
	}
	post := &BlogPost{
		Path:       p,
		Source:     filename,
		Title:      doc.String("title"),
		Author:     doc.String("author"),
		AuthorURL:  doc.String("authorURL"),
		AuthorFBID: doc.String("authorFBID"),
		Tags:       doc.Strings("tags"),
		RawContent: doc.Body,
		Fields:     doc.Fields,
	}
	post.ID = post.Title
	if d, ok := doc.Time("date"); ok {
		post.Date = d
	} else {
		m := postFilename.FindStringSubmatch(filename)
		post.Date, _ = time.Parse("2006-01-02", m[1]+"-"+m[2]+"-"+m[3])
	}
	return post, true
}

func (b *builder) loadPosts(ctx context.Context) error {
	entries, err := os.ReadDir(b.roots.Blog)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read blog directory").
			WithContext("path", b.roots.Blog).Build()
	}

	posts := make([]*BlogPost, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}
		name := entry.Name()
		if !postFilename.MatchString(name) {
			b.logger.Warn("Skipping blog file without date prefix", logfields.File(name))
			continue
		}
		data, err := os.ReadFile(filepath.Join(b.roots.Blog, name))
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read blog post").
				WithContext("path", name).Build()
		}
		doc, err := frontmatter.Parse(data)
		if err != nil {
			b.skip("blog/"+name, err)
			continue
		}
		post, _ := PostFromDocument(name, doc)
		posts = append(posts, post)
	}
	b.store.setPosts(posts)
	return nil
}
