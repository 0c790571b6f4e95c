package assets

import (
	"encoding/xml"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"git.home.luguber.info/inful/docserve/internal/config"
	"git.home.luguber.info/inful/docserve/internal/content"
	derrors "git.home.luguber.info/inful/docserve/internal/foundation/errors"
	"git.home.luguber.info/inful/docserve/internal/render"
)

// FeedKind selects the feed dialect.
type FeedKind string

const (
	FeedRSS  FeedKind = "rss"
	FeedAtom FeedKind = "atom"
)

// FeedLimit is the number of newest posts a feed carries.
const FeedLimit = 20

const (
	descriptionLimit = 250
	atomNamespace    = "http://www.w3.org/2005/Atom"
)

type AtomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Xmlns   string      `xml:"xmlns,attr"`
	ID      string      `xml:"id"`
	Title   string      `xml:"title"`
	Updated string      `xml:"updated"`
	Link    []AtomLink  `xml:"link"`
	Entry   []AtomEntry `xml:"entry"`
}

type AtomEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Published string      `xml:"published"`
	Updated   string      `xml:"updated"`
	Link      []AtomLink  `xml:"link"`
	Author    *AtomAuthor `xml:"author,omitempty"`
	Summary   AtomText    `xml:"summary"`
	Content   AtomCDATA   `xml:"content"`
}

type AtomAuthor struct {
	Name string `xml:"name"`
	URI  string `xml:"uri,omitempty"`
}

type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
}

type AtomText struct {
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

type AtomCDATA struct {
	Type    string `xml:"type,attr"`
	Content string `xml:",cdata"`
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Item          []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author,omitempty"`
	Description string `xml:"description"`
}

// WriteFeed writes the blog feed of the given kind for the newest posts in store.
func WriteFeed(w io.Writer, kind FeedKind, site *config.Site, store *content.Store) error {
	posts := store.Posts()
	if len(posts) > FeedLimit {
		posts = posts[:FeedLimit]
	}
	blogURL := AbsoluteURL(site, "blog")
	var updated time.Time
	if len(posts) > 0 {
		updated = posts[0].Date
	}

	var doc any
	switch kind {
	case FeedAtom:
		feed := AtomFeed{
			Xmlns:   atomNamespace,
			ID:      blogURL,
			Title:   site.Title + " Blog",
			Updated: updated.UTC().Format(time.RFC3339),
			Link:    []AtomLink{{Href: blogURL}, {Href: AbsoluteURL(site, "blog/atom.xml"), Rel: "self"}},
		}
		for _, p := range posts {
			link := AbsoluteURL(site, "blog/"+p.Path)
			entry := AtomEntry{
				ID:        link,
				Title:     p.Title,
				Published: p.Date.UTC().Format(time.RFC3339),
				Updated:   p.Date.UTC().Format(time.RFC3339),
				Link:      []AtomLink{{Href: link}},
				Summary:   AtomText{Type: "text", Content: description(p.RawContent)},
				Content:   AtomCDATA{Type: "html", Content: p.RawContent},
			}
			if p.Author != "" {
				entry.Author = &AtomAuthor{Name: p.Author, URI: p.AuthorURL}
			}
			feed.Entry = append(feed.Entry, entry)
		}
		doc = feed
	case FeedRSS:
		rss := rssDocument{
			Version: "2.0",
			Channel: rssChannel{
				Title:         site.Title + " Blog",
				Link:          blogURL,
				Description:   "The best place to stay up-to-date with the latest " + site.Title + " news and events.",
				LastBuildDate: updated.UTC().Format(time.RFC1123Z),
			},
		}
		for _, p := range posts {
			link := AbsoluteURL(site, "blog/"+p.Path)
			rss.Channel.Item = append(rss.Channel.Item, rssItem{
				Title:       p.Title,
				Link:        link,
				GUID:        link,
				PubDate:     p.Date.UTC().Format(time.RFC1123Z),
				Author:      p.Author,
				Description: description(p.RawContent),
			})
		}
		doc = rss
	default:
		return derrors.ValidationError("unknown feed kind").WithContext("kind", string(kind)).Build()
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return derrors.WrapError(err, derrors.CategoryRender, "failed to encode feed").
			WithContext("kind", string(kind)).Build()
	}
	return enc.Close()
}

// FeedKindFor picks Atom for atom.xml and RSS for any other feed file name.
func FeedKindFor(name string) FeedKind {
	if strings.EqualFold(name, "atom.xml") {
		return FeedAtom
	}
	return FeedRSS
}

// description is the post summary when it has a truncate marker, else its first
// descriptionLimit characters.
func description(raw string) string {
	if s, cut := render.Summary(raw); cut {
		return strings.TrimSpace(s)
	}
	if utf8.RuneCountInString(raw) <= descriptionLimit {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(string([]rune(raw)[:descriptionLimit]))
}
