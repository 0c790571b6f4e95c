package markdown

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEdits_SingleReplacement(t *testing.T) {
	src := []byte("See [API](./api-guide.md) for details.\n")
	old := []byte("./api-guide.md")
	idx := bytes.Index(src, old)
	require.NotEqual(t, -1, idx)

	out, err := ApplyEdits(src, []Edit{{Start: idx, End: idx + len(old), Replacement: []byte("/docs/api-guide.html")}})
	require.NoError(t, err)
	require.Equal(t, "See [API](/docs/api-guide.html) for details.\n", string(out))
}

func TestApplyEdits_UnorderedInputAndSourceUntouched(t *testing.T) {
	src := []byte("aXbYc")
	out, err := ApplyEdits(src, []Edit{
		{Start: 3, End: 4, Replacement: []byte("yy")},
		{Start: 1, End: 2, Replacement: []byte("")},
	})
	require.NoError(t, err)
	assert.Equal(t, "abyyc", string(out))
	assert.Equal(t, "aXbYc", string(src))
}

func TestApplyEdits_Insertion(t *testing.T) {
	out, err := ApplyEdits([]byte("ac"), []Edit{{Start: 1, End: 1, Replacement: []byte("b")}})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestApplyEdits_RejectsOverlap(t *testing.T) {
	_, err := ApplyEdits([]byte("abcdef"), []Edit{{Start: 0, End: 3}, {Start: 2, End: 4}})
	require.ErrorIs(t, err, ErrOverlappingEdits)
}

func TestApplyEdits_RejectsOutOfBounds(t *testing.T) {
	_, err := ApplyEdits([]byte("abc"), []Edit{{Start: 1, End: 9}})
	require.Error(t, err)
	_, err = ApplyEdits([]byte("abc"), []Edit{{Start: 2, End: 1}})
	require.Error(t, err)
}

func TestFindLinkTargets(t *testing.T) {
	src := []byte("[a](intro.md) and ![img](assets/x.png \"t\") and [b](./guide.md#top)\n[c]()")
	targets := FindLinkTargets(src)
	require.Len(t, targets, 3)
	assert.Equal(t, "intro.md", targets[0].Dest)
	assert.Equal(t, "assets/x.png", targets[1].Dest)
	assert.Equal(t, "./guide.md#top", targets[2].Dest)
	for _, tg := range targets {
		assert.Equal(t, tg.Dest, string(src[tg.Start:tg.End]))
	}
}

func TestExtractLinks_KindsAndOrder(t *testing.T) {
	body := []byte("[one](one.md) ![pic](p.png) <https://example.com>\n\n[ref]: ./two.md\n\nsee [ref]\n")
	links := ExtractLinks(body)

	require.Len(t, links, 5)
	assert.Equal(t, Link{Kind: LinkKindInline, Destination: "one.md"}, links[0])
	assert.Equal(t, Link{Kind: LinkKindImage, Destination: "p.png"}, links[1])
	assert.Equal(t, LinkKindAuto, links[2].Kind)
	assert.Equal(t, Link{Kind: LinkKindInline, Destination: "./two.md"}, links[3])
	assert.Equal(t, Link{Kind: LinkKindReferenceDefinition, Destination: "./two.md"}, links[4])
}

func TestLink_IsRelativeDoc(t *testing.T) {
	assert.True(t, Link{Kind: LinkKindInline, Destination: "intro.md"}.IsRelativeDoc())
	assert.True(t, Link{Kind: LinkKindInline, Destination: "./intro.md#x"}.IsRelativeDoc())
	assert.False(t, Link{Kind: LinkKindInline, Destination: "https://x/y.md"}.IsRelativeDoc())
	assert.False(t, Link{Kind: LinkKindInline, Destination: "/docs/intro.md"}.IsRelativeDoc())
	assert.False(t, Link{Kind: LinkKindImage, Destination: "a.md"}.IsRelativeDoc())
	assert.False(t, Link{Kind: LinkKindInline, Destination: "intro.html"}.IsRelativeDoc())
}
