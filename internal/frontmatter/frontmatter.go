package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a front matter
// delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// Document is a Markdown file split into its YAML front matter and body.
type Document struct {
	Fields map[string]any
	Body   string
	Had    bool
}

// Split separates `---` delimited front matter from the Markdown body.
//
// If the document does not start with a delimiter line, had is false and body is the
// full input. Both LF and CRLF line endings are accepted.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closeSeq := []byte(nl + "---")
	idx := bytes.Index(rest, closeSeq)
	for idx >= 0 {
		after := rest[idx+len(closeSeq):]
		switch {
		case len(after) == 0:
			return rest[:idx+len(nl)], []byte{}, true, nil
		case bytes.HasPrefix(after, []byte(nl)):
			return rest[:idx+len(nl)], after[len(nl):], true, nil
		}
		// "---" followed by more text on the same line is not a delimiter.
		next := bytes.Index(rest[idx+len(closeSeq):], closeSeq)
		if next < 0 {
			break
		}
		idx += len(closeSeq) + next
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// ParseYAML parses raw YAML front matter (without delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits content and decodes its front matter.
func Parse(content []byte) (*Document, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return nil, err
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return nil, fmt.Errorf("parse front matter: %w", err)
	}
	return &Document{Fields: fields, Body: string(body), Had: had}, nil
}

// String returns the field as a string, formatting scalars that YAML decoded as other types.
func (d *Document) String(key string) string {
	v, ok := d.Fields[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

// Strings returns a list field. A scalar string is split on commas.
func (d *Document) Strings(key string) []string {
	switch x := d.Fields[key].(type) {
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(x, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Time returns a date field. YAML timestamps and the common string layouts are accepted.
func (d *Document) Time(key string) (time.Time, bool) {
	switch x := d.Fields[key].(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, strings.TrimSpace(x)); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
