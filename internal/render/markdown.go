package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"git.home.luguber.info/inful/docserve/internal/slug"
)

// newMarkdown returns the goldmark instance used for every Markdown body.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// headingIDs makes heading anchors match the generated table of contents.
type headingIDs struct {
	reg *slug.Registry
}

func (h *headingIDs) Generate(value []byte, _ gmast.NodeKind) []byte {
	id := h.reg.Unique(string(value))
	if id == "" {
		id = h.reg.Unique("heading")
	}
	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.reg.Reserve(string(value))
}

// convert renders a Markdown body to HTML.
func convert(md goldmark.Markdown, body string) ([]byte, error) {
	src := []byte(body)
	ctx := parser.NewContext(parser.WithIDs(&headingIDs{reg: slug.NewRegistry()}))
	doc := md.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))
	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, src, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
